package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jackyeh168/saveforperks/src/internal/config"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// Open 依設定開啟資料庫連線
//
// postgres：正式環境，結構由 goose 遷移管理（Migrate）。
// sqlite：本機開發，以 AutoMigrate 建立結構，並限制為單一連線。
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         newGormLogger(cfg.DBDebug),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to postgres")
		}
		return db, nil

	case config.DriverSQLite:
		dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", cfg.SQLitePath)
		db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite database")
		}
		if err := limitToSingleConnection(db); err != nil {
			return nil, err
		}
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		return db, nil

	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// AutoMigrate 以 GORM 模型建立資料表（sqlite 與測試使用）
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return errors.Wrap(err, "failed to auto-migrate models")
	}
	return nil
}

// Ping 健康檢查
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 關閉底層連線
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func limitToSingleConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to access sql.DB")
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

// ===========================
// GORM logger → pkg/logger
// ===========================

type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...), "component", "gorm")
}

func newGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(gormLogWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
