package rules

import (
	"github.com/oneeighty/connect/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rules",
	fx.Provide(func(cfg config.Config) (*Holder, error) {
		return NewHolder(cfg.RulesPath)
	}),
)
