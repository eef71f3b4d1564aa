package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.DB.Store)
	assert.True(t, cfg.Stock.CriticalThreshold.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_UmbralDesdeEntorno(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STOCK_CRITICAL_THRESHOLD", "2.5")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Stock.CriticalThreshold.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_BackendDesconocido(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_ProductionExigeSecret(t *testing.T) {
	cfg := &Config{
		App:   AppConfig{Env: "production"},
		DB:    DBConfig{Store: StorePostgres},
		Stock: StockConfig{CriticalThreshold: decimal.NewFromInt(5)},
	}
	assert.Error(t, cfg.Validate())
	cfg.JWT.Secret = "x"
	assert.NoError(t, cfg.Validate())
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "lab", Password: "p@ss:word", DBName: "reagentes", SSLMode: "disable"}
	assert.Equal(t, "postgres://lab:p%40ss%3Aword@db:5432/reagentes?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
