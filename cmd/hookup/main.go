package main

import (
	"github.com/smallbiznis/hookup/internal/clock"
	"github.com/smallbiznis/hookup/internal/config"
	"github.com/smallbiznis/hookup/internal/hookup"
	"github.com/smallbiznis/hookup/internal/migration"
	"github.com/smallbiznis/hookup/internal/observability"
	"github.com/smallbiznis/hookup/internal/ratelimit"
	"github.com/smallbiznis/hookup/internal/server"
	"github.com/smallbiznis/hookup/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		storage(config.Load()),
		ratelimit.Module,

		// Functional Domains
		hookup.Module,
		server.Module,
	)
	app.Run()
}

// storage wires the database only when hookups are persisted through gorm.
func storage(cfg config.Config) fx.Option {
	if cfg.UsesMemoryStore() {
		return fx.Options()
	}
	return fx.Options(
		db.Module,
		migration.Module,
	)
}
