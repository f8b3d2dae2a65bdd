package migration

import (
	"github.com/oneeighty/connect/internal/config"
	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// golang-migrate drivers are wired for postgres only; dev
			// and test databases use the model schema directly.
			return conn.AutoMigrate(
				&organizationdomain.Source{},
				&organizationdomain.Organization{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
