package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/oneeighty/connect/internal/clock"
	"github.com/oneeighty/connect/internal/config"
	"github.com/oneeighty/connect/internal/export"
	"github.com/oneeighty/connect/internal/geocode"
	"github.com/oneeighty/connect/internal/ingest"
	"github.com/oneeighty/connect/internal/migration"
	"github.com/oneeighty/connect/internal/observability"
	"github.com/oneeighty/connect/internal/organization"
	"github.com/oneeighty/connect/internal/providers"
	"github.com/oneeighty/connect/internal/registry"
	"github.com/oneeighty/connect/internal/report"
	"github.com/oneeighty/connect/internal/rules"
	"github.com/oneeighty/connect/internal/server"
	"github.com/oneeighty/connect/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		rules.Module,

		organization.Module,
		registry.Module,
		geocode.Module,
		export.Module,
		report.Module,
		providers.Module,
		ingest.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
