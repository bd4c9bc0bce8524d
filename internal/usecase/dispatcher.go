package usecase

import (
	"context"
	"errors"
	"strings"

	"voicechat/internal/domain"
	"voicechat/internal/ports"
)

// dispatch sends a prompt to the model and appends exactly one model entry.
// The request is detached from caller cancellation; only the timeout bounds it.
func (c *VoiceController) dispatch(active *listeningSession, prompt string) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(active.ctx), c.cfg.ModelTimeout)
	defer cancel()

	reply, err := c.ask(ctx, prompt)

	c.mu.Lock()
	if err != nil {
		c.history = append(c.history, domain.ChatEntry{Role: domain.RoleModel, Text: domain.ModelFallbackReply})
		c.errText = domain.ModelErrorMessage
		c.logger.Error("model request failed", "session_id", active.id, "error", err)
		c.report(err, map[string]string{"session_id": active.id, "stage": "model"})
	} else {
		c.history = append(c.history, domain.ChatEntry{Role: domain.RoleModel, Text: reply})
		c.logger.Debug("model replied", "session_id", active.id, "chars", len(reply))
	}
	c.state = domain.SessionStateIdle
	c.commit()
}

func (c *VoiceController) ask(ctx context.Context, prompt string) (string, error) {
	chat, err := c.chatSession(ctx)
	if err != nil {
		return "", err
	}

	reply, err := chat.Send(ctx, prompt)
	if err != nil {
		return "", domain.NewModelRequestError("send", err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", domain.NewModelRequestError("send", errors.New("empty reply"))
	}
	return reply, nil
}

// chatSession returns the conversation handle, creating it on first use. Only
// one request is ever in flight, so creation does not race.
func (c *VoiceController) chatSession(ctx context.Context) (ports.ChatSession, error) {
	c.mu.Lock()
	chat := c.chat
	c.mu.Unlock()
	if chat != nil {
		return chat, nil
	}

	if c.model == nil {
		return nil, domain.NewModelRequestError("create session", errors.New("no chat model configured"))
	}
	chat, err := c.model.NewSession(ctx, c.cfg.SystemInstruction)
	if err != nil {
		return nil, domain.NewModelRequestError("create session", err)
	}

	c.mu.Lock()
	c.chat = chat
	c.mu.Unlock()
	return chat, nil
}
