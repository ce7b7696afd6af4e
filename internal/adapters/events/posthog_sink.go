// posthog_sink.go delivers ledger events to PostHog, degrading to log-only
// when no API key is configured.
package events

import (
	"context"
	"log/slog"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	portsvc "github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/middleware"
	"github.com/posthog/posthog-go"
	"github.com/shopspring/decimal"
)

// PosthogSink implements the event sink over the PostHog capture API. Events
// are enqueued after the ledger transaction commits; a sink failure is logged
// and never propagated to the caller.
type PosthogSink struct {
	client posthog.Client
	logger *slog.Logger
}

var _ portsvc.EventSinkSvc = (*PosthogSink)(nil)

// NewPosthogSink builds the sink. With an empty API key the sink still logs
// events but enqueues nothing.
func NewPosthogSink(apiKey string, logger *slog.Logger) *PosthogSink {
	sink := &PosthogSink{logger: logger}
	if apiKey == "" {
		logger.Warn("PostHog API key is empty, event sink runs in log-only mode")
		return sink
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: "https://eu.i.posthog.com"})
	if err != nil {
		logger.Error("failed to initialize PostHog client, event sink runs in log-only mode", "error", err)
		return sink
	}
	sink.client = client
	return sink
}

func (s *PosthogSink) OnPosted(ctx context.Context, serial int64, origin *domain.DocumentRef, actor string, total decimal.Decimal) {
	props := map[string]any{
		"entry_serial": serial,
		"entry_number": domain.FormatEntrySerial(serial),
		"total":        total.String(),
	}
	if origin != nil {
		props["origin"] = origin.String()
	}
	s.capture(ctx, actor, "ledger_entry_posted", props)
}

func (s *PosthogSink) OnVoided(ctx context.Context, serial int64, reversalSerial int64, actor string, reason string) {
	s.capture(ctx, actor, "ledger_entry_voided", map[string]any{
		"entry_serial":    serial,
		"entry_number":    domain.FormatEntrySerial(serial),
		"reversal_serial": reversalSerial,
		"reversal_number": domain.FormatEntrySerial(reversalSerial),
		"reason":          reason,
	})
}

// Close flushes queued events. Call on shutdown.
func (s *PosthogSink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *PosthogSink) capture(ctx context.Context, actor, event string, props map[string]any) {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("ledger event", "event", event, "actor", actor, "properties", props)

	if s.client == nil {
		return
	}
	err := s.client.Enqueue(posthog.Capture{
		DistinctId: actor,
		Event:      event,
		Properties: props,
	})
	if err != nil {
		logger.Error("failed to enqueue ledger event", "event", event, "error", err)
	}
}
