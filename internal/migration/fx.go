package migration

import (
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/expense/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Apply),
)

// Apply brings the schema up to date: SQL migrations on postgres, AutoMigrate elsewhere.
func Apply(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.DBType == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("database migrations applied")
		return nil
	}

	if !cfg.DBAutoMigrate {
		return nil
	}
	if err := conn.AutoMigrate(&domain.Expense{}); err != nil {
		return err
	}
	log.Info("database schema auto-migrated", zap.String("type", cfg.DBType))
	return nil
}
