package ai

import (
	"go.uber.org/fx"

	"github.com/oneeighty/connect/internal/config"
)

var Module = fx.Module("providers.ai",
	fx.Provide(NewFromConfig),
)

// NewFromConfig returns the template generator unless outreach drafting
// is switched off, in which case drafts come back empty.
func NewFromConfig(cfg config.Config) Generator {
	if !cfg.OutreachDrafts {
		return &NoOpGenerator{}
	}
	return NewTemplateGenerator()
}
