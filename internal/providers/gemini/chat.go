package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"voicechat/internal/domain"
	"voicechat/internal/ports"
)

const DefaultModel = "gemini-2.5-flash"

// Config selects the Gemini model and credentials.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint. Empty uses the SDK default.
	BaseURL string
}

// Model creates Gemini chat sessions through the genai SDK.
type Model struct {
	client *genai.Client
	model  string
}

func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}
	return &Model{client: client, model: cfg.Model}, nil
}

func (m *Model) NewSession(ctx context.Context, systemInstruction string) (ports.ChatSession, error) {
	var config *genai.GenerateContentConfig
	if instruction := strings.TrimSpace(systemInstruction); instruction != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		}
	}

	chat, err := m.client.Chats.Create(ctx, m.model, config, nil)
	if err != nil {
		return nil, domain.NewModelRequestError("create session", err)
	}
	return &session{chat: chat}, nil
}

// session keeps the SDK chat, which carries the conversation history.
type session struct {
	chat *genai.Chat
}

func (s *session) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", domain.NewModelRequestError("send", err)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", domain.NewModelRequestError("send", errors.New("gemini returned no text"))
	}
	return reply, nil
}
