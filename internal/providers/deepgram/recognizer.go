package deepgram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"voicechat/internal/domain"
	"voicechat/internal/ports"
)

const streamDrainTimeout = 4 * time.Second

// RecognizerOptions controls capture and streaming for listening sessions.
type RecognizerOptions struct {
	Audio          ports.AudioConfig
	Encoding       string
	ChunkSize      int
	StreamingGrace time.Duration
}

type streamer interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (stream, error)
}

type availabilityChecker interface {
	Available() error
}

// Recognizer implements ports.SpeechRecognizer with Deepgram live
// transcription fed by a microphone capture.
type Recognizer struct {
	streamer streamer
	capture  ports.AudioCapture
	opts     RecognizerOptions
}

// NewRecognizerFactory returns a factory that fails with
// domain.ErrRecognitionUnsupported when Deepgram or the recorder is unusable.
func NewRecognizerFactory(cfg Config, capture ports.AudioCapture, opts RecognizerOptions) ports.RecognizerFactory {
	return func() (ports.SpeechRecognizer, error) {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("%w: DEEPGRAM_API_KEY is not configured", domain.ErrRecognitionUnsupported)
		}
		if checker, ok := capture.(availabilityChecker); ok {
			if err := checker.Available(); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrRecognitionUnsupported, err)
			}
		}
		return NewRecognizer(NewProvider(cfg), capture, opts), nil
	}
}

func NewRecognizer(provider *Provider, capture ports.AudioCapture, opts RecognizerOptions) *Recognizer {
	return newRecognizer(provider, capture, opts)
}

func newRecognizer(s streamer, capture ports.AudioCapture, opts RecognizerOptions) *Recognizer {
	if opts.ChunkSize < 256 {
		opts.ChunkSize = 4096
	}
	if opts.Encoding == "" {
		opts.Encoding = "linear16"
	}
	return &Recognizer{streamer: s, capture: capture, opts: opts}
}

func (r *Recognizer) Listen(ctx context.Context, cfg ports.RecognitionConfig) (ports.RecognitionSession, error) {
	st, err := r.streamer.StartStreaming(ctx, StreamingConfig{
		SampleRate:     r.opts.Audio.SampleRate,
		Channels:       r.opts.Audio.Channels,
		Encoding:       r.opts.Encoding,
		InterimResults: cfg.InterimResults,
		Language:       cfg.Language,
	})
	if err != nil {
		return nil, err
	}

	audio, err := r.capture.Start(ctx, r.opts.Audio)
	if err != nil {
		_ = st.Close()
		return nil, captureError(err)
	}

	session := &recognitionSession{
		ctx:      ctx,
		stream:   st,
		audio:    audio,
		cfg:      cfg,
		opts:     r.opts,
		events:   make(chan domain.RecognitionEvent, 64),
		stopCh:   make(chan struct{}),
		pumpDone: make(chan struct{}),
		finished: make(chan struct{}),
		batches:  batchTranslator{interim: cfg.InterimResults},
	}
	go session.run()
	return session, nil
}

func captureError(err error) error {
	code := domain.RecognitionErrorAudioCapture
	if errors.Is(err, os.ErrPermission) || mentionsPermission(err.Error()) {
		code = domain.RecognitionErrorNotAllowed
	}
	return &domain.RecognitionError{Code: code, Err: err}
}

func mentionsPermission(message string) bool {
	message = strings.ToLower(message)
	for _, needle := range []string{"permission denied", "operation not permitted", "access denied"} {
		if strings.Contains(message, needle) {
			return true
		}
	}
	return false
}

type recognitionSession struct {
	ctx    context.Context
	stream stream
	audio  ports.AudioSession
	cfg    ports.RecognitionConfig
	opts   RecognizerOptions

	events   chan domain.RecognitionEvent
	stopCh   chan struct{}
	stopOnce sync.Once
	pumpDone chan struct{}
	finished chan struct{}

	failMu  sync.Mutex
	failure error

	batches batchTranslator
}

func (s *recognitionSession) Events() <-chan domain.RecognitionEvent {
	return s.events
}

func (s *recognitionSession) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	return nil
}

func (s *recognitionSession) stopRequested() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *recognitionSession) run() {
	defer close(s.events)
	defer close(s.finished)

	go s.pump()
	go s.shutdownOnStop()

	for result := range s.stream.Results() {
		if event, ok := s.batches.translate(result); ok {
			s.events <- event
		}
		if result.SpeechFinal && !s.cfg.Continuous {
			_ = s.Stop()
		}
	}

	streamErr := s.stream.Wait()
	_ = s.audio.Stop()
	<-s.pumpDone

	if failure := s.firstFailure(streamErr); failure != nil {
		s.events <- domain.RecognitionErrorEvent(failure)
	}
	s.events <- domain.RecognitionEvent{Kind: domain.RecognitionEventEnd}
}

func (s *recognitionSession) pump() {
	defer close(s.pumpDone)

	err := pumpAudioChunks(s.audio, s.stream, s.opts.ChunkSize)
	if err != nil {
		s.fail(err)
		_ = s.stream.Close()
		return
	}
	if !s.stopRequested() {
		// The recorder exited on its own; finish like a normal stop.
		_ = s.Stop()
	}
}

func (s *recognitionSession) shutdownOnStop() {
	select {
	case <-s.stopCh:
	case <-s.finished:
		return
	}

	_ = s.audio.Stop()
	<-s.pumpDone

	if s.opts.StreamingGrace > 0 {
		timer := time.NewTimer(s.opts.StreamingGrace)
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			timer.Stop()
		case <-s.finished:
			timer.Stop()
			return
		}
	}

	_ = s.stream.CloseSend()
	_ = waitForStream(s.stream, streamDrainTimeout)
}

func (s *recognitionSession) fail(err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.failure == nil {
		s.failure = err
	}
}

func (s *recognitionSession) firstFailure(streamErr error) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if streamErr != nil {
		return &domain.RecognitionError{Code: domain.RecognitionErrorNetwork, Err: streamErr}
	}
	return nil
}

// batchTranslator turns Deepgram messages into result batches. Interim
// messages revise the current index; a final message settles it and advances.
type batchTranslator struct {
	index   int
	interim bool
}

func (t *batchTranslator) translate(result streamResult) (domain.RecognitionEvent, bool) {
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return domain.RecognitionEvent{}, false
	}
	if !result.IsFinal && !t.interim {
		return domain.RecognitionEvent{}, false
	}
	if t.index > 0 {
		text = " " + text
	}

	event := domain.RecognitionEvent{
		Kind:        domain.RecognitionEventResult,
		ResultIndex: t.index,
		Results:     []domain.RecognitionResult{{Transcript: text, Final: result.IsFinal}},
	}
	if result.IsFinal {
		t.index++
	}
	return event, true
}
