package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 2*time.Minute, cfg.Cache.RoomsTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Photos.MaxFileSizeBytes)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/webp"}, cfg.Photos.AllowedMIMEs)
	assert.Equal(t, 1, cfg.Reports.WorkerConcurrency)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ROOMS_CACHE_TTL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REPORTS_WORKER_CONCURRENCY", "4")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.RoomsTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 4, cfg.Reports.WorkerConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadRejectsDefaultSecretsInProduction(t *testing.T) {
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:     EnvProduction,
			Port:    8080,
			JWT:     JWTConfig{Secret: "s3cret"},
			Photos:  PhotosConfig{SignedURLSecret: "p"},
			Reports: ReportsConfig{SignedURLSecret: "r"},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: true},
		{name: "default photo secret", mutate: func(c *Config) { c.Photos.SignedURLSecret = defaultPhotosSecret }, wantErr: true},
		{name: "default secret outside production", mutate: func(c *Config) {
			c.Env = EnvDevelopment
			c.JWT.Secret = defaultJWTSecret
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 1, cfg.Reports.WorkerConcurrency)
		})
	}
}
