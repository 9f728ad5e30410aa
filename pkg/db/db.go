package db

import (
	"fmt"

	"github.com/fixwell/docforge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open creates the gorm connection used by every repository.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: opening %s: %w", cfg.Database.DSN, err)
	}
	log.Info("database opened", zap.String("dsn", cfg.Database.DSN))
	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(Open),
)
