package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultDataDir, cfg.Data.Dir)
	assert.Equal(t, DefaultDownloadTimeoutS, cfg.Data.DownloadTimeoutS)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Data.PORURL)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
data:
  dir: /var/lib/optd
  porURL: https://example.com/optd_por_public.csv
  downloadTimeoutS: 60
server:
  port: 9090
log:
  level: debug
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/optd", cfg.Data.Dir)
	assert.Equal(t, "https://example.com/optd_por_public.csv", cfg.Data.PORURL)
	assert.Empty(t, cfg.Data.UNLCURL)
	assert.Equal(t, 60, cfg.Data.DownloadTimeoutS)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParsePartialAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  port: 8181\n"))
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, DefaultDataDir, cfg.Data.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"bad yaml", "data: [", "parsing config"},
		{"bad url", "data:\n  porURL: not a url\n", "PORURL"},
		{"port out of range", "server:\n  port: 70000\n", "Port"},
		{"negative timeout", "data:\n  downloadTimeoutS: -1\n", "DownloadTimeoutS"},
		{"unknown level", "log:\n  level: chatty\n", "Level"},
		{"unknown format", "log:\n  format: xml\n", "Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "optd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  dir: ./cache\n"), 0644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./cache", cfg.Data.Dir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
