package database

import (
	"ViewCounter/internal/api/config"
	"ViewCounter/internal/model"
	"ViewCounter/internal/pkg/logger"
	"fmt"
	log "log/slog"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewGormDB 初始化并返回 *gorm.DB 实例，处理连接池配置
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "mysql", "":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      logger.NewGormLogger(),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	if cfg.AutoMigrate {
		if err = AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	log.Info("Database connection established successfully.", "driver", dialector.Name(), "target", describeDSN(cfg))
	return db, nil
}

// AutoMigrate 建表
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.ViewCounter{}, &model.ViewDailyMetric{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// describeDSN 日志中只打印地址和库名，不打印密码
func describeDSN(cfg *config.DBConfig) string {
	if cfg.Driver != "mysql" && cfg.Driver != "" {
		return cfg.DSN
	}
	parsed, err := mysqldriver.ParseDSN(cfg.DSN)
	if err != nil {
		return "[unparsable dsn]"
	}
	return parsed.Addr + "/" + parsed.DBName
}
