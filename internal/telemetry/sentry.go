package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"voicechat/internal/config"
	"voicechat/internal/ports"
)

const flushTimeout = 2 * time.Second

// Reporter is an error reporter that can be drained on shutdown.
type Reporter interface {
	ports.ErrorReporter
	Flush() bool
}

// NewReporter returns a Sentry-backed reporter when a DSN is configured and a
// no-op reporter otherwise.
func NewReporter(cfg config.SentryConfig, release string) (Reporter, error) {
	if cfg.DSN == "" {
		return NopReporter{}, nil
	}
	return newSentryReporter(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     release,
	})
}

// SentryReporter sends errors to Sentry through its own hub so tests and
// multiple controllers never share global state.
type SentryReporter struct {
	hub *sentry.Hub
}

func newSentryReporter(opts sentry.ClientOptions) (*SentryReporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (r *SentryReporter) Report(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

func (r *SentryReporter) Flush() bool {
	return r.hub.Flush(flushTimeout)
}

// NopReporter drops every report.
type NopReporter struct{}

func (NopReporter) Report(error, map[string]string) {}

func (NopReporter) Flush() bool { return true }
