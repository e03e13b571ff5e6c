package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/bootstrap"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/migration"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMigrateRequiresPostgres = errors.New("rollback requires DATABASE_TYPE=postgres")

func migrateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the expenses schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
				// sqlite has no SQL migrations, so up always auto-migrates there
				cfg.DBAutoMigrate = true
				return migration.Apply(conn, cfg, log)
			})
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps := v.GetInt("migrate.steps")
			if steps < 1 {
				return fmt.Errorf("steps must be at least 1, got %d", steps)
			}
			return withDatabase(cmd.Context(), func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
				if cfg.DBType != "postgres" {
					return errMigrateRequiresPostgres
				}
				sqlDB, err := conn.DB()
				if err != nil {
					return err
				}
				if err := migration.RollbackMigrations(sqlDB, steps); err != nil {
					return err
				}
				log.Info("database migrations rolled back", zap.Int("steps", steps))
				return nil
			})
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back")
	_ = v.BindPFlag("migrate.steps", down.Flags().Lookup("steps"))
	cmd.AddCommand(down)

	return cmd
}

// withDatabase starts only the infrastructure modules and hands the connection to fn.
func withDatabase(ctx context.Context, fn func(*gorm.DB, config.Config, *zap.Logger) error) error {
	var (
		conn *gorm.DB
		cfg  config.Config
		log  *zap.Logger
	)
	app := fx.New(
		bootstrap.Infrastructure(),
		fx.NopLogger,
		fx.Populate(&conn, &cfg, &log),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	return fn(conn, cfg, log)
}
