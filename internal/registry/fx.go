package registry

import (
	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/config"
	"github.com/oneeighty/connect/internal/registry/charitybase"
	"github.com/oneeighty/connect/internal/registry/companieshouse"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("registry",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *charitybase.Client {
		return charitybase.NewClient(cfg.CharityBaseURL, cfg.CharityBaseAPIKey, log)
	}),
	fx.Provide(func(cfg config.Config, clk clock.Clock, log *zap.Logger) *companieshouse.Client {
		return companieshouse.NewClient(cfg.CompaniesHouseURL, cfg.CompaniesHouseAPIKey, clk, cfg.RegistryPause, log)
	}),
)
