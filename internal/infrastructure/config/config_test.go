package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "auto", cfg.DBMigrationMode)
	assert.Equal(t, 5, cfg.DBConnectRetries)
	assert.Equal(t, 5*time.Second, cfg.DBConnectRetryDelay)
	assert.Equal(t, 5, cfg.DBMaxOpenConns)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.SMTPEnabled())
	assert.Empty(t, cfg.DefaultAdminPassword)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_CONNECT_RETRY_DELAY", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.DBConnectRetryDelay)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.RedisEnabled)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBUser: "hr", DBPassword: "p@ss", DBHost: "db", DBPort: "3306", DBName: "hr_app"}

	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "hr:p@ss@tcp(db:3306)/hr_app")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	assert.Contains(t, cfg.GetServerDSN(), "@tcp(db:3306)/")
	assert.NotContains(t, cfg.GetServerDSN(), "hr_app")
}
