package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fixwell/docforge/internal/audit"
	"github.com/fixwell/docforge/internal/clock"
	"github.com/fixwell/docforge/internal/config"
	"github.com/fixwell/docforge/internal/migration"
	"github.com/fixwell/docforge/internal/notify"
	"github.com/fixwell/docforge/internal/observability/logger"
	"github.com/fixwell/docforge/internal/observability/tracing"
	"github.com/fixwell/docforge/internal/record"
	"github.com/fixwell/docforge/internal/render"
	"github.com/fixwell/docforge/internal/seed"
	"github.com/fixwell/docforge/internal/server"
	"github.com/fixwell/docforge/internal/template"
	"github.com/fixwell/docforge/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			if err := migration.Run(conn); err != nil {
				return err
			}
			return seed.EnsureDefaults(conn)
		}),
		template.Module,
		record.Module,
		render.Module,
		audit.Module,
		notify.Module,
		server.Module,
	)
	app.Run()
}
