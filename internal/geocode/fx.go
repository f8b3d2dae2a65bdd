package geocode

import (
	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/config"
	"github.com/oneeighty/connect/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("geocode",
	fx.Provide(func(cfg config.Config, clk clock.Clock, log *zap.Logger, m *metrics.Metrics) *Client {
		return NewClient(cfg.PostcodesURL, clk, cfg.GeocodePause, log, m)
	}),
)
