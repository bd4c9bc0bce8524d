package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicechat/internal/domain"
	"voicechat/internal/ports"
)

var (
	ErrNotListening     = errors.New("no active listening session")
	ErrControllerClosed = errors.New("voice controller is closed")
)

const defaultModelTimeout = 60 * time.Second

// Config controls voice session behavior.
type Config struct {
	Recognition       ports.RecognitionConfig
	SystemInstruction string
	// Greeting seeds the history with a model entry when non-empty.
	Greeting     string
	ModelTimeout time.Duration
	Logger       *slog.Logger
}

// VoiceController coordinates the microphone lifecycle, transcript
// accumulation and model requests. Transitions are serialized by mu.
type VoiceController struct {
	newRecognizer ports.RecognizerFactory
	model         ports.ChatModel
	rules         ports.TranscriptRules
	events        ports.EventSink
	reporter      ports.ErrorReporter
	logger        *slog.Logger
	cfg           Config

	mu sync.Mutex
	// emitMu is taken before mu is released so snapshots reach the sink in
	// transition order.
	emitMu sync.Mutex

	state       domain.SessionState
	history     []domain.ChatEntry
	interim     string
	errText     string
	transcript  *transcriptAccumulator
	current     *listeningSession
	recognizer  ports.SpeechRecognizer
	unsupported bool
	chat        ports.ChatSession
	closed      bool

	wg sync.WaitGroup
}

func NewVoiceController(
	newRecognizer ports.RecognizerFactory,
	model ports.ChatModel,
	rules ports.TranscriptRules,
	events ports.EventSink,
	reporter ports.ErrorReporter,
	cfg Config,
) *VoiceController {
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = defaultModelTimeout
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = domain.DefaultSystemInstruction
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &VoiceController{
		newRecognizer: newRecognizer,
		model:         model,
		rules:         rules,
		events:        events,
		reporter:      reporter,
		logger:        logger.With("component", "voice_controller"),
		cfg:           cfg,
		state:         domain.SessionStateIdle,
		transcript:    newTranscriptAccumulator(),
	}
	if greeting := strings.TrimSpace(cfg.Greeting); greeting != "" {
		c.history = append(c.history, domain.ChatEntry{Role: domain.RoleModel, Text: greeting})
	}
	return c
}

// Start activates speech recognition. It is a no-op while a session is
// listening or a model request is in flight.
func (c *VoiceController) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrControllerClosed
	case c.state == domain.SessionStateProcessing:
		c.mu.Unlock()
		c.logger.Debug("start ignored while processing")
		return nil
	case c.state == domain.SessionStateListening:
		c.mu.Unlock()
		return nil
	case c.unsupported:
		c.mu.Unlock()
		return domain.ErrRecognitionUnsupported
	}

	if c.recognizer == nil {
		recognizer, err := c.newRecognizer()
		if err != nil {
			if errors.Is(err, domain.ErrRecognitionUnsupported) {
				c.unsupported = true
				c.errText = domain.UnsupportedMessage
				c.logger.Warn("speech recognition unavailable", "error", err)
			} else {
				c.errText = domain.RecognitionErrorMessage(domain.RecognitionErrorEvent(err).Code)
				c.logger.Error("create recognizer failed", "error", err)
			}
			c.commit()
			return err
		}
		c.recognizer = recognizer
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	active := &listeningSession{id: uuid.NewString(), ctx: sessionCtx, cancel: cancel}
	c.current = active
	c.state = domain.SessionStateListening
	c.interim = ""
	c.errText = ""
	c.transcript.Reset()
	recognizer := c.recognizer
	c.logger.Debug("listening session starting", "session_id", active.id)
	c.commit()

	session, err := recognizer.Listen(sessionCtx, c.cfg.Recognition)

	c.mu.Lock()
	if err != nil {
		if c.current == active {
			c.failLocked(active, domain.RecognitionErrorEvent(err))
			c.commit()
		} else {
			c.mu.Unlock()
		}
		cancel()
		return err
	}
	if c.current != active || c.closed {
		if c.current == active {
			c.current = nil
			c.state = domain.SessionStateIdle
			c.interim = ""
			c.commit()
		} else {
			c.mu.Unlock()
		}
		_ = session.Stop()
		cancel()
		return ErrControllerClosed
	}
	active.session = session
	stop := active.stopRequested
	c.wg.Add(1)
	go c.consume(active)
	c.mu.Unlock()

	if stop {
		return session.Stop()
	}
	return nil
}

// Stop asks the active listening session to finish. The transition out of
// listening happens when the recognizer delivers its end event.
func (c *VoiceController) Stop() error {
	c.mu.Lock()
	active := c.current
	if active == nil || c.state != domain.SessionStateListening {
		c.mu.Unlock()
		return ErrNotListening
	}
	session := active.requestStop()
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	return session.Stop()
}

// Toggle is the single microphone gesture: stop while listening, start while
// idle, nothing while processing.
func (c *VoiceController) Toggle(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case domain.SessionStateProcessing:
		return nil
	case domain.SessionStateListening:
		if err := c.Stop(); err != nil && !errors.Is(err, ErrNotListening) {
			return err
		}
		return nil
	default:
		return c.Start(ctx)
	}
}

// Snapshot returns the current view projection.
func (c *VoiceController) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops any listening session and waits for outstanding work.
func (c *VoiceController) Close() error {
	c.mu.Lock()
	c.closed = true
	var session ports.RecognitionSession
	if c.current != nil {
		session = c.current.requestStop()
	}
	c.mu.Unlock()

	if session != nil {
		_ = session.Stop()
	}
	c.wg.Wait()
	return nil
}

func (c *VoiceController) consume(active *listeningSession) {
	defer c.wg.Done()

	for event := range active.session.Events() {
		c.handleRecognition(active, event)
	}
	// Sessions that close without an end event still end.
	c.handleRecognition(active, domain.RecognitionEvent{Kind: domain.RecognitionEventEnd})
}

func (c *VoiceController) handleRecognition(active *listeningSession, event domain.RecognitionEvent) {
	c.mu.Lock()
	if c.current != active {
		c.mu.Unlock()
		return
	}

	switch event.Kind {
	case domain.RecognitionEventResult:
		c.interim = c.transcript.Add(event)
		c.commit()
	case domain.RecognitionEventError:
		c.failLocked(active, event)
		session := active.session
		c.commit()
		if session != nil {
			_ = session.Stop()
		}
	case domain.RecognitionEventEnd:
		c.endLocked(active)
	default:
		c.mu.Unlock()
		c.logger.Warn("unknown recognition event", "kind", event.Kind, "session_id", active.id)
	}
}

// endLocked finishes a listening session and dispatches the transcript.
// It releases mu.
func (c *VoiceController) endLocked(active *listeningSession) {
	c.current = nil
	active.cancel()

	text := strings.TrimSpace(c.transcript.Text())
	c.transcript.Reset()
	c.interim = ""

	if text == "" {
		c.state = domain.SessionStateIdle
		c.logger.Debug("listening session ended without speech", "session_id", active.id)
		c.commit()
		return
	}

	prompt := c.rewrite(active, text)
	c.history = append(c.history, domain.ChatEntry{Role: domain.RoleUser, Text: prompt})
	c.state = domain.SessionStateProcessing
	c.errText = ""
	c.logger.Debug("dispatching transcript", "session_id", active.id, "chars", len(prompt))

	c.wg.Add(1)
	go c.dispatch(active, prompt)
	c.commit()
}

// failLocked ends a listening session after a recognition error, discarding
// the partial transcript.
func (c *VoiceController) failLocked(active *listeningSession, event domain.RecognitionEvent) {
	c.current = nil
	active.cancel()

	c.transcript.Reset()
	c.interim = ""
	c.state = domain.SessionStateIdle
	c.errText = domain.RecognitionErrorMessage(event.Code)

	c.logger.Warn("recognition error", "session_id", active.id, "code", event.Code, "detail", event.Detail)
	switch event.Code {
	case domain.RecognitionErrorNoSpeech, domain.RecognitionErrorAborted:
	default:
		c.report(&domain.RecognitionError{Code: event.Code, Detail: event.Detail}, map[string]string{
			"session_id":        active.id,
			"recognition_error": string(event.Code),
		})
	}
}

func (c *VoiceController) rewrite(active *listeningSession, text string) string {
	if c.rules == nil {
		return text
	}
	rewritten, err := c.rules.Apply(text)
	if err != nil {
		c.logger.Warn("vocabulary rules failed; using raw transcript", "session_id", active.id, "error", err)
		return text
	}
	if rewritten = strings.TrimSpace(rewritten); rewritten == "" {
		return text
	}
	return rewritten
}

// commit publishes the current state to the sink. It must be called with mu
// held and releases it.
func (c *VoiceController) commit() {
	snapshot := c.snapshotLocked()
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	if c.events != nil {
		c.events.SessionChanged(snapshot)
	}
}

func (c *VoiceController) snapshotLocked() domain.Snapshot {
	history := make([]domain.ChatEntry, len(c.history))
	copy(history, c.history)
	return domain.Snapshot{
		State:       c.state,
		Listening:   c.state == domain.SessionStateListening,
		Processing:  c.state == domain.SessionStateProcessing,
		History:     history,
		InterimText: c.interim,
		ErrorText:   c.errText,
	}
}

func (c *VoiceController) report(err error, tags map[string]string) {
	if c.reporter != nil {
		c.reporter.Report(err, tags)
	}
}
