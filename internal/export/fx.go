package export

import (
	"go.uber.org/fx"

	"github.com/oneeighty/connect/internal/config"
)

var Module = fx.Module("export",
	fx.Provide(func(cfg config.Config) *Writer {
		return NewWriter(cfg.ExportDir)
	}),
)
