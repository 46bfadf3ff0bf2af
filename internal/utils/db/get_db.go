package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KromaEnergia/api-tesouraria/internal/config"
)

// GetDB abre a base configurada e confirma que responde.
func GetDB(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		database *gorm.DB
		err      error
	)
	switch cfg.Driver {
	case "", "postgres":
		database, err = ConnectDataBase(ctx, cfg)
	case "sqlite":
		database, err = gorm.Open(sqlite.Open(cfg.Path), gormConfig())
	default:
		return nil, fmt.Errorf("DB_DRIVER desconhecido: %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return database, nil
}
