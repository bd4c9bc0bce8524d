package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"voicechat/internal/audio"
	"voicechat/internal/config"
	"voicechat/internal/ports"
	"voicechat/internal/providers/deepgram"
	"voicechat/internal/providers/gemini"
	openaichat "voicechat/internal/providers/openai"
	"voicechat/internal/rules"
	"voicechat/internal/telemetry"
	"voicechat/internal/usecase"
)

// Release tags error reports; overridden at link time.
var Release = "voicechat@dev"

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.VoiceController
	Config     config.Config
	Logger     *slog.Logger

	reporter  telemetry.Reporter
	logCloser io.Closer
}

// Shutdown stops the controller and drains telemetry.
func (s Services) Shutdown() {
	if s.Controller != nil {
		_ = s.Controller.Close()
	}
	if s.reporter != nil {
		s.reporter.Flush()
	}
	if s.logCloser != nil {
		_ = s.logCloser.Close()
	}
}

// Build wires all backend dependencies for the loaded configuration. Logs go
// to cfg.Log.File when set and to logOutput otherwise.
func Build(ctx context.Context, cfg config.Config, eventSink ports.EventSink, logOutput io.Writer) (Services, error) {
	logger, logCloser, err := telemetry.NewLogger(cfg.Log, logOutput)
	if err != nil {
		return Services{}, err
	}

	reporter, err := telemetry.NewReporter(cfg.Sentry, Release)
	if err != nil {
		_ = logCloser.Close()
		return Services{}, fmt.Errorf("init error reporting: %w", err)
	}

	vocabulary, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		_ = logCloser.Close()
		return Services{}, err
	}

	model, err := newChatModel(ctx, cfg.Model)
	if err != nil {
		_ = logCloser.Close()
		return Services{}, fmt.Errorf("init %s model: %w", cfg.Model.Provider, err)
	}

	recognizers := deepgram.NewRecognizerFactory(
		deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: cfg.Deepgram.SmartFormat,
		},
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		deepgram.RecognizerOptions{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Encoding:       "linear16",
			ChunkSize:      cfg.Session.ChunkSize,
			StreamingGrace: cfg.Session.StreamingGrace,
		},
	)

	controller := usecase.NewVoiceController(
		recognizers,
		model,
		vocabulary,
		eventSink,
		reporter,
		usecase.Config{
			Recognition: ports.RecognitionConfig{
				Continuous:     true,
				InterimResults: true,
				Language:       cfg.Deepgram.Language,
			},
			SystemInstruction: cfg.Conversation.SystemInstruction,
			Greeting:          cfg.Conversation.Greeting,
			ModelTimeout:      cfg.Model.Timeout,
			Logger:            logger,
		},
	)

	logger.Info("voice chat ready",
		"model_provider", cfg.Model.Provider,
		"model", cfg.Model.Name,
		"language", cfg.Deepgram.Language,
		"vocabulary_rules", vocabulary.Len(),
	)

	return Services{
		Controller: controller,
		Config:     cfg,
		Logger:     logger,
		reporter:   reporter,
		logCloser:  logCloser,
	}, nil
}

func newChatModel(ctx context.Context, cfg config.ModelConfig) (ports.ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewModel(ctx, gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Name,
			BaseURL: cfg.BaseURL,
		})
	case config.ProviderOpenAI:
		return openaichat.NewModel(openaichat.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Name,
		})
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
}
