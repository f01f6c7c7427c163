package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pairlink/internal/clock"
	"github.com/smallbiznis/pairlink/internal/config"
	"github.com/smallbiznis/pairlink/internal/events"
	"github.com/smallbiznis/pairlink/internal/identity"
	"github.com/smallbiznis/pairlink/internal/logger"
	"github.com/smallbiznis/pairlink/internal/migration"
	"github.com/smallbiznis/pairlink/internal/observability/metrics"
	"github.com/smallbiznis/pairlink/internal/scan"
	"github.com/smallbiznis/pairlink/internal/seed"
	"github.com/smallbiznis/pairlink/internal/server"
	"github.com/smallbiznis/pairlink/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(func() (*snowflake.Node, error) {
			return snowflake.NewNode(1)
		}),
		db.Module,
		clock.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if !cfg.IsProduction() {
				return seed.EnsureDemoSubmitters(conn)
			}
			return nil
		}),

		fx.Provide(func(cfg config.Config) *metrics.PairingMetrics {
			return metrics.PairingWithConfig(metrics.Config{
				ServiceName: "pairlink",
				Environment: cfg.Environment,
			})
		}),
		fx.Provide(events.NewOutbox),
		identity.Module,
		scan.Module,
		server.Module,
	)
	app.Run()
}
