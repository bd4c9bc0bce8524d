package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"voicechat/internal/bootstrap"
	"voicechat/internal/config"
	"voicechat/internal/domain"
	"voicechat/internal/usecase"
)

const eventSession = "voicechat:session"

var errNoReply = errors.New("there is no reply to copy yet")

// voiceController is the slice of the controller the desktop shell drives.
type voiceController interface {
	Start(ctx context.Context) error
	Stop() error
	Toggle(ctx context.Context) error
	Snapshot() domain.Snapshot
}

// sessionView is the payload of every session event.
type sessionView struct {
	domain.Snapshot
	Hint string `json:"hint"`
}

// App is the Wails application root.
type App struct {
	ctx context.Context

	cfg        config.Config
	services   bootstrap.Services
	controller voiceController
	bootErr    error

	emit      func(ctx context.Context, name string, data ...interface{})
	clipboard func(ctx context.Context, text string) error
}

func NewApp(cfg config.Config) *App {
	return &App{
		cfg:       cfg,
		emit:      runtime.EventsEmit,
		clipboard: runtime.ClipboardSetText,
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(ctx, a.cfg, a, os.Stderr)
	if err != nil {
		a.bootErr = err
		a.SessionChanged(domain.Snapshot{State: domain.SessionStateIdle, ErrorText: "Startup failed: " + err.Error()})
		return
	}

	a.services = services
	a.controller = services.Controller
	a.SessionChanged(a.controller.Snapshot())
}

func (a *App) shutdown(_ context.Context) {
	a.services.Shutdown()
}

// Toggle starts listening when idle and stops when listening.
func (a *App) Toggle() (domain.Snapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.Snapshot{}, err
	}
	if err := a.controller.Toggle(a.ctx); err != nil {
		return a.controller.Snapshot(), err
	}
	return a.controller.Snapshot(), nil
}

// StartListening opens the microphone.
func (a *App) StartListening() (domain.Snapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.Snapshot{}, err
	}
	if err := a.controller.Start(a.ctx); err != nil {
		return a.controller.Snapshot(), err
	}
	return a.controller.Snapshot(), nil
}

// StopListening finishes the current utterance.
func (a *App) StopListening() (domain.Snapshot, error) {
	if err := a.requireReady(); err != nil {
		return domain.Snapshot{}, err
	}
	if err := a.controller.Stop(); err != nil && !errors.Is(err, usecase.ErrNotListening) {
		return a.controller.Snapshot(), err
	}
	return a.controller.Snapshot(), nil
}

// GetSnapshot returns the current session view.
func (a *App) GetSnapshot() sessionView {
	if a.controller == nil {
		snapshot := domain.Snapshot{State: domain.SessionStateIdle}
		if a.bootErr != nil {
			snapshot.ErrorText = "Startup failed: " + a.bootErr.Error()
		}
		return newSessionView(snapshot)
	}
	return newSessionView(a.controller.Snapshot())
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"modelProvider":    a.cfg.Model.Provider,
		"model":            a.cfg.Model.Name,
		"speechProvider":   "Deepgram",
		"speechModel":      a.cfg.Deepgram.Model,
		"language":         a.cfg.Deepgram.Language,
		"rulesFile":        a.cfg.Rules.Path,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
	}
}

// CopyLastReply puts the most recent model reply on the clipboard.
func (a *App) CopyLastReply() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	reply, ok := a.controller.Snapshot().LastReply()
	if !ok {
		return "", errNoReply
	}
	if err := a.clipboard(a.ctx, reply); err != nil {
		return "", fmt.Errorf("clipboard write failed: %w", err)
	}
	return reply, nil
}

// SessionChanged forwards controller snapshots to the frontend.
func (a *App) SessionChanged(snapshot domain.Snapshot) {
	if a.ctx == nil || a.emit == nil {
		return
	}
	a.emit(a.ctx, eventSession, newSessionView(snapshot))
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func newSessionView(snapshot domain.Snapshot) sessionView {
	if snapshot.History == nil {
		snapshot.History = []domain.ChatEntry{}
	}
	return sessionView{Snapshot: snapshot, Hint: snapshot.Hint()}
}
