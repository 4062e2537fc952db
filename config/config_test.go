package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DATABASE_URL":   "postgres://localhost/tt",
		"JWT_SECRET_KEY": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 4, cfg.GroupSize)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvMemoryStoreNeedsNoDatabase(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"STORE_DRIVER":         "Memory",
		"JWT_SECRET_KEY":       "secret",
		"SERVER_PORT":          "9000",
		"GROUP_SIZE":           "3",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 3, cfg.GroupSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestFromEnvErrors(t *testing.T) {
	base := func(extra map[string]string) map[string]string {
		m := map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET_KEY": "s"}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"JWT_SECRET_KEY": "s"}},
		{"missing jwt secret", map[string]string{"DATABASE_URL": "postgres://x"}},
		{"unknown driver", base(map[string]string{"STORE_DRIVER": "sqlite"})},
		{"port not a number", base(map[string]string{"SERVER_PORT": "http"})},
		{"port out of range", base(map[string]string{"SERVER_PORT": "70000"})},
		{"group too small", base(map[string]string{"GROUP_SIZE": "1"})},
		{"bad timeout", base(map[string]string{"DB_TIMEOUT": "soon"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsProcessEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "from-env")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecretKey)
}
