package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/oneeighty/connect/internal/config"
	"github.com/oneeighty/connect/internal/providers/email"
)

// Notifier mails a short run summary to the configured address. A blank
// address disables it.
type Notifier struct {
	provider email.Provider
	to       string
	log      *zap.Logger
}

func NewNotifier(cfg config.Config, provider email.Provider, log *zap.Logger) *Notifier {
	return &Notifier{
		provider: provider,
		to:       cfg.NotifyEmail,
		log:      log,
	}
}

func (n *Notifier) NotifyRunComplete(ctx context.Context, result *RunResult) {
	if n.to == "" {
		return
	}

	subject := fmt.Sprintf("Aggregation run %s complete", result.RunID)
	body := fmt.Sprintf(
		"<p>Run <strong>%s</strong> finished in %s.</p>"+
			"<ul><li>Charities fetched: %d</li><li>Companies fetched: %d</li>"+
			"<li>Merged: %d</li><li>Persisted: %d</li></ul>",
		result.RunID, result.Duration, result.CharitiesFetched,
		result.CompaniesFetched, result.Merged, result.Persisted,
	)

	if err := n.provider.Send(ctx, []string{n.to}, subject, body); err != nil {
		n.log.Warn("failed to send run summary", zap.Error(err))
	}
}
