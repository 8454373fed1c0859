package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/nextdevhq/storefront/internal/clock"
	"github.com/nextdevhq/storefront/internal/config"
	"github.com/nextdevhq/storefront/internal/migration"
	"github.com/nextdevhq/storefront/internal/observability"
	"github.com/nextdevhq/storefront/internal/seed"
	"github.com/nextdevhq/storefront/internal/server"
	"github.com/nextdevhq/storefront/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,
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
