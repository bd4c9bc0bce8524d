package deepgram

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"voicechat/internal/domain"
	"voicechat/internal/ports"
)

// pumpAudioChunks copies captured audio into the stream. It returns nil once
// the capture is exhausted or closed.
func pumpAudioChunks(audio ports.AudioSession, sink stream, chunkSize int) error {
	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := sink.SendAudio(buf[:n]); sendErr != nil {
				return &domain.RecognitionError{
					Code: domain.RecognitionErrorNetwork,
					Err:  fmt.Errorf("failed to stream audio: %w", sendErr),
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return &domain.RecognitionError{
				Code: domain.RecognitionErrorAudioCapture,
				Err:  fmt.Errorf("audio capture error: %w", err),
			}
		}
	}
}

func waitForStream(session stream, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
