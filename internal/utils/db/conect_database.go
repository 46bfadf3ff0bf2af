package db

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KromaEnergia/api-tesouraria/internal/config"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	}
}

// PostgresDSN monta a DSN; as credenciais vêm do ambiente ou do Secrets Manager.
func PostgresDSN(cfg config.DatabaseConfig, username, password string) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d", cfg.Host, username, password, cfg.DBName, cfg.Port)
	if cfg.SSLMode != "" {
		dsn += " sslmode=" + cfg.SSLMode
	}
	return dsn
}

func ConnectDataBase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	username, password, err := retrieveCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	database, err := gorm.Open(postgres.Open(PostgresDSN(cfg, username, password)), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("conectar postgres: %w", err)
	}
	return database, nil
}
