package usecase

import (
	"context"

	"voicechat/internal/ports"
)

// listeningSession tracks one recognizer activation. All fields are guarded by
// the controller mutex.
type listeningSession struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	// session is nil until the recognizer has finished opening.
	session       ports.RecognitionSession
	stopRequested bool
}

func (s *listeningSession) requestStop() ports.RecognitionSession {
	s.stopRequested = true
	return s.session
}
