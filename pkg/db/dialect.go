package db

import (
	"fmt"
	"net/url"

	"github.com/glebarez/sqlite"
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	cgosqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialect picks the gorm driver for DATABASE_TYPE. "sqlite" is the pure Go
// driver used for local runs and tests; "sqlite3" links against libsqlite3.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "postgres":
		return postgres.New(postgres.Config{DSN: PostgresDSN(cfg)}), nil
	case "mysql":
		return mysql.New(mysql.Config{DSN: MySQLDSN(cfg), DefaultStringSize: 255}), nil
	case "sqlite":
		return sqlite.Open(SQLiteDSN(cfg.DBPath)), nil
	case "sqlite3":
		return cgosqlite.Open(cgoSQLiteDSN(cfg.DBPath)), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DBType)
	}
}

func PostgresDSN(cfg config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)
}

func MySQLDSN(cfg config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
	)
}

// SQLiteDSN enables foreign keys and a busy timeout so concurrent ingests
// wait on the write lock instead of failing with SQLITE_BUSY.
func SQLiteDSN(path string) string {
	if path == "" {
		path = "receipts.db"
	}
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + params.Encode()
}

func cgoSQLiteDSN(path string) string {
	if path == "" {
		path = "receipts.db"
	}
	return "file:" + path + "?_foreign_keys=1&_busy_timeout=5000"
}
