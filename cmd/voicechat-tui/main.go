package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"voicechat/internal/bootstrap"
	"voicechat/internal/config"
	"voicechat/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voicechat-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return fmt.Errorf("%w (set GEMINI_API_KEY, or OPENAI_API_KEY with VOICECHAT_MODEL_PROVIDER=openai)", err)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The alternate screen owns the terminal; logs only go to VOICECHAT_LOG_FILE.
	sink := &tui.Sink{}
	services, err := bootstrap.Build(ctx, cfg, sink, io.Discard)
	if err != nil {
		return err
	}
	defer services.Shutdown()

	model := tui.NewModel(ctx, services.Controller, tui.Options{})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	sink.Attach(program)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
