package ports

import (
	"context"
	"io"

	"voicechat/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// RecognitionConfig mirrors the knobs of a browser speech recognizer.
type RecognitionConfig struct {
	Continuous     bool
	InterimResults bool
	Language       string
}

// RecognitionSession is one listening session. Events emits result and error
// events followed by exactly one end event, then closes.
type RecognitionSession interface {
	Events() <-chan domain.RecognitionEvent
	// Stop asks the engine to finish; the end event arrives asynchronously.
	Stop() error
}

// SpeechRecognizer opens listening sessions.
type SpeechRecognizer interface {
	Listen(ctx context.Context, cfg RecognitionConfig) (RecognitionSession, error)
}

// RecognizerFactory creates the recognizer handle. It returns
// domain.ErrRecognitionUnsupported when no engine is available.
type RecognizerFactory func() (SpeechRecognizer, error)

// ChatSession is a conversational context reused across turns.
type ChatSession interface {
	Send(ctx context.Context, text string) (string, error)
}

// ChatModel creates chat sessions against a hosted model.
type ChatModel interface {
	NewSession(ctx context.Context, systemInstruction string) (ChatSession, error)
}

// TranscriptRules rewrites a final transcript before it is sent.
type TranscriptRules interface {
	Apply(text string) (string, error)
}

// EventSink receives every controller state change, in order.
type EventSink interface {
	SessionChanged(snapshot domain.Snapshot)
}

// ErrorReporter forwards recoverable failures to an error tracker.
type ErrorReporter interface {
	Report(err error, tags map[string]string)
}
