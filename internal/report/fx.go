package report

import (
	"go.uber.org/fx"

	"github.com/oneeighty/connect/internal/config"
)

var Module = fx.Module("report",
	fx.Provide(func(cfg config.Config) *Generator {
		return NewGenerator(cfg.ExportDir)
	}),
)
