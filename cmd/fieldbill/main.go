package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fieldbill/internal/activity"
	"github.com/smallbiznis/fieldbill/internal/clock"
	"github.com/smallbiznis/fieldbill/internal/config"
	"github.com/smallbiznis/fieldbill/internal/credentials"
	"github.com/smallbiznis/fieldbill/internal/customer"
	"github.com/smallbiznis/fieldbill/internal/dashboard"
	"github.com/smallbiznis/fieldbill/internal/gateway"
	"github.com/smallbiznis/fieldbill/internal/invoice"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"github.com/smallbiznis/fieldbill/internal/observability/logger"
	"github.com/smallbiznis/fieldbill/internal/payment"
	"github.com/smallbiznis/fieldbill/internal/providers/pdf"
	"github.com/smallbiznis/fieldbill/internal/scheduler"
	"github.com/smallbiznis/fieldbill/internal/server"
	"github.com/smallbiznis/fieldbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		fx.Provide(
			config.Load,
			loggerConfig,
			logger.New,
			newSnowflakeNode,
			config.NewGatewayConfigHolder,
		),
		clock.Module,
		db.Module,
		kvstore.Module,

		// Outbound platform access
		credentials.Module,
		gateway.Module,

		// Ledgers and views
		customer.Module,
		invoice.Module,
		payment.Module,
		activity.Module,
		dashboard.Module,

		// Documents, background work, HTTP surface
		pdf.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func loggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	}
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
