package bootstrap

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/clock"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/migration"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/observability"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/ratelimit"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/server"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/pkg/db"
	"go.uber.org/fx"
)

// Infrastructure wires config, logging, tracing, metrics and the database.
func Infrastructure() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		db.Module,
	)
}

// API is the full receipt ingestion service.
func API() fx.Option {
	return fx.Options(
		Infrastructure(),
		fx.Provide(RegisterSnowflake),
		clock.Module,
		migration.Module,
		ratelimit.Module,
		expense.Module,
		server.Module,
	)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
