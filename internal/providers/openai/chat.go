package openai

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"voicechat/internal/domain"
	"voicechat/internal/ports"
)

const DefaultModel = "gpt-4o-mini"

// Config selects an OpenAI-compatible chat completion endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxRetries overrides the SDK retry count when positive. Negative
	// disables retries.
	MaxRetries int
}

// Model creates chat sessions backed by the chat completions API.
type Model struct {
	client openai.Client
	model  string
}

func NewModel(cfg Config) (*Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	switch {
	case cfg.MaxRetries < 0:
		opts = append(opts, option.WithMaxRetries(0))
	case cfg.MaxRetries > 0:
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}

	return &Model{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

func (m *Model) NewSession(_ context.Context, systemInstruction string) (ports.ChatSession, error) {
	s := &session{client: m.client, model: m.model}
	if instruction := strings.TrimSpace(systemInstruction); instruction != "" {
		s.history = append(s.history, openai.SystemMessage(instruction))
	}
	return s, nil
}

// session replays the whole conversation on every turn; the API is stateless.
type session struct {
	client openai.Client
	model  string

	mu      sync.Mutex
	history []openai.ChatCompletionMessageParamUnion
}

func (s *session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(s.history[:len(s.history):len(s.history)], openai.UserMessage(text))
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: messages,
	})
	if err != nil {
		return "", domain.NewModelRequestError("send", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewModelRequestError("send", errors.New("completion returned no choices"))
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", domain.NewModelRequestError("send", errors.New("completion returned no text"))
	}

	// Only successful turns join the conversation.
	s.history = append(messages, openai.AssistantMessage(reply))
	return reply, nil
}
