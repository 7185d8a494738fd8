package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/whats-middleware/pkg/config"
)

func TestLoad_Padroes(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTP.Addr())
	assert.Equal(t, "55", cfg.Import.DefaultCountryCode)
	assert.Equal(t, 8, cfg.Dispatch.Lanes)
	assert.Equal(t, 3, cfg.Dispatch.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Dispatch.BaseBackoff)
	assert.Equal(t, 24*time.Hour, cfg.Dispatch.DedupTTL)
}

func TestLoad_EnvVarsTemPrioridade(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("IMPORT_COUNTRY_CODE", "1")
	t.Setenv("DISPATCH_LANES", "4")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "1", cfg.Import.DefaultCountryCode)
	assert.Equal(t, 4, cfg.Dispatch.Lanes)
}

func TestDSN_EscapaCredenciais(t *testing.T) {
	db := config.DBConfig{
		Host: "localhost", Port: 5432,
		User: "app", Password: "s3nh@:com/caracteres",
		DBName: "middleware", SSLMode: "disable",
	}
	dsn := db.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.NotContains(t, dsn, "s3nh@:com/caracteres", "senha deve sair com URL encoding")
}

func TestConnectionString_DatabaseURLTemPrecedencia(t *testing.T) {
	db := config.DBConfig{
		DatabaseURL: "postgresql://u:p@db.example.com:5432/x",
		Host:        "localhost",
	}
	assert.Equal(t, "postgresql://u:p@db.example.com:5432/x", db.ConnectionString())
}
