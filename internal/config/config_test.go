package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.Import.Workers)
	assert.Equal(t, "BE", cfg.Import.DefaultCountry)
	assert.Equal(t, 36, cfg.Import.DefaultDurationMonths)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
}

func TestLoad_FromEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("IMPORT_WORKERS=64\nCORS_ORIGINS=http://a.test,http://b.test\nLOG_FORMAT=JSON\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("IMPORT_WORKERS")
		os.Unsetenv("CORS_ORIGINS")
		os.Unsetenv("LOG_FORMAT")
	})

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, MaxWorkers, cfg.Import.Workers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"log level", "LOG_LEVEL", "chatty"},
		{"log format", "LOG_FORMAT", "xml"},
		{"duration", "IMPORT_DEFAULT_DURATION_MONTHS", "0"},
		{"upload size", "MAX_UPLOAD_SIZE", "-1"},
		{"metrics path", "METRICS_PATH", "metrics"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(&Config{LogLevel: "debug", LogFormat: "json"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger(&Config{LogLevel: "warn", LogFormat: "text"})
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
}
