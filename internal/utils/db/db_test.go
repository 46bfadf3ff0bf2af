package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KromaEnergia/api-tesouraria/internal/config"
)

func TestPostgresDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, DBName: "tesouraria", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=tesouraria port=5432 sslmode=disable", PostgresDSN(cfg, "u", "p"))
}

func TestParseCredentials(t *testing.T) {
	c, err := ParseCredentials(`{"username":"u","password":"p"}`)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "u", Password: "p"}, c)

	_, err = ParseCredentials(`{"username":"u"}`)
	assert.Error(t, err)
	_, err = ParseCredentials(`nope`)
	assert.Error(t, err)
}

func TestRetrieveCredentialsDoAmbiente(t *testing.T) {
	u, p, err := retrieveCredentials(context.Background(), config.DatabaseConfig{User: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", u)
	assert.Equal(t, "p", p)

	_, _, err = retrieveCredentials(context.Background(), config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestGetDBSqlite(t *testing.T) {
	database, err := GetDB(context.Background(), config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "t.db")})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Close())

	_, err = GetDB(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
