package main

import (
	"context"
	"errors"
	"testing"

	"voicechat/internal/config"
	"voicechat/internal/domain"
	"voicechat/internal/usecase"
)

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestGetSnapshotWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	view := app.GetSnapshot()
	if view.State != domain.SessionStateIdle || view.Listening || view.History == nil {
		t.Fatalf("unexpected view: %+v", view)
	}

	app.bootErr = errors.New("boot")
	view = app.GetSnapshot()
	if view.ErrorText != "Startup failed: boot" || view.Hint != view.ErrorText {
		t.Fatalf("unexpected boot view: %+v", view)
	}
}

func TestSessionChangedEmitsViewWithHint(t *testing.T) {
	t.Parallel()

	var got []sessionView
	app := &App{
		ctx: context.Background(),
		emit: func(_ context.Context, name string, data ...interface{}) {
			if name != eventSession {
				t.Errorf("unexpected event name %q", name)
			}
			got = append(got, data[0].(sessionView))
		},
	}

	app.SessionChanged(domain.Snapshot{State: domain.SessionStateListening, Listening: true, InterimText: "hel"})

	if len(got) != 1 {
		t.Fatalf("expected one event, got %d", len(got))
	}
	if got[0].Hint != "Listening... Toggle the mic to finish." || got[0].InterimText != "hel" {
		t.Fatalf("unexpected view: %+v", got[0])
	}
}

func TestSessionChangedBeforeStartupIsDropped(t *testing.T) {
	t.Parallel()

	called := false
	app := &App{emit: func(context.Context, string, ...interface{}) { called = true }}
	app.SessionChanged(domain.Snapshot{})
	if called {
		t.Fatalf("expected no emit without a runtime context")
	}
}

func TestToggleAndStopDelegateToController(t *testing.T) {
	t.Parallel()

	controller := &fakeController{snapshot: domain.Snapshot{State: domain.SessionStateListening, Listening: true}}
	app := &App{ctx: context.Background(), controller: controller}

	snapshot, err := app.Toggle()
	if err != nil || !snapshot.Listening || controller.toggles != 1 {
		t.Fatalf("unexpected toggle result: %+v %v", snapshot, err)
	}

	controller.stopErr = usecase.ErrNotListening
	if _, err := app.StopListening(); err != nil {
		t.Fatalf("stop while idle should be quiet, got %v", err)
	}

	controller.startErr = domain.ErrRecognitionUnsupported
	if _, err := app.StartListening(); !errors.Is(err, domain.ErrRecognitionUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestCopyLastReply(t *testing.T) {
	t.Parallel()

	var copied string
	controller := &fakeController{snapshot: domain.Snapshot{History: []domain.ChatEntry{
		{Role: domain.RoleModel, Text: "Hello!"},
		{Role: domain.RoleUser, Text: "hi"},
		{Role: domain.RoleModel, Text: "How can I help?"},
	}}}
	app := &App{
		ctx:        context.Background(),
		controller: controller,
		clipboard: func(_ context.Context, text string) error {
			copied = text
			return nil
		},
	}

	reply, err := app.CopyLastReply()
	if err != nil || reply != "How can I help?" || copied != reply {
		t.Fatalf("unexpected copy result: %q %q %v", reply, copied, err)
	}

	controller.snapshot = domain.Snapshot{}
	if _, err := app.CopyLastReply(); !errors.Is(err, errNoReply) {
		t.Fatalf("expected no reply error, got %v", err)
	}
}

func TestGetRuntimeInfo(t *testing.T) {
	t.Parallel()

	app := NewApp(config.Config{
		Model:    config.ModelConfig{Provider: config.ProviderGemini, Name: "gemini-2.5-flash", APIKey: "secret"},
		Deepgram: config.DeepgramConfig{Model: "nova-2", Language: "en-US", APIKey: "secret"},
	})

	info := app.GetRuntimeInfo()
	if info["model"] != "gemini-2.5-flash" || info["language"] != "en-US" {
		t.Fatalf("unexpected runtime info: %v", info)
	}
	for key, value := range info {
		if value == "secret" {
			t.Fatalf("runtime info leaked a credential under %q", key)
		}
	}

	app.bootErr = errors.New("boot")
	if app.GetRuntimeInfo()["error"] != "boot" {
		t.Fatalf("expected boot error in runtime info")
	}
}

type fakeController struct {
	snapshot domain.Snapshot
	startErr error
	stopErr  error
	toggles  int
}

func (c *fakeController) Start(context.Context) error  { return c.startErr }
func (c *fakeController) Stop() error                  { return c.stopErr }
func (c *fakeController) Toggle(context.Context) error { c.toggles++; return nil }
func (c *fakeController) Snapshot() domain.Snapshot    { return c.snapshot }
