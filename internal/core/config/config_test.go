package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, ProviderMyMemory, cfg.Translation.Provider)
	assert.Equal(t, 10, cfg.History.RecentLimit)
	assert.Equal(t, 50, cfg.History.NotesLimit)
	assert.Equal(t, 5000, cfg.CharLimit)
	assert.Equal(t, DriverJSONFile, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(dataDir, "lingo.json"), cfg.StoreFile())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Speech.Transcribers, cfg.Speech.Transcribers)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
translation:
  provider: local
  rate_limit: 0.5
speech:
  transcribers: [vosk, rev]
history:
  recent_limit: 3
char_limit: 200
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ProviderLocal, cfg.Translation.Provider)
	assert.InDelta(t, 0.5, cfg.Translation.RateLimit, 0.0001)
	assert.Equal(t, []string{TranscriberVosk, TranscriberRev}, cfg.Speech.Transcribers)
	assert.Equal(t, 3, cfg.History.RecentLimit)
	assert.Equal(t, 50, cfg.History.NotesLimit, "unset values keep defaults")
	assert.Equal(t, 200, cfg.CharLimit)
	assert.Equal(t, DefaultCardTemplate, cfg.Templates.Card)
}

func TestLoad_Credentials(t *testing.T) {
	t.Setenv("WIT_AI_KEY", "wit-token")
	t.Setenv("OCR_SPACE_KEY", "ocr-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/lingo")

	path := writeConfig(t, "storage:\n  driver: postgres\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "wit-token", cfg.Credentials.WitAIKey)
	assert.Equal(t, "ocr-token", cfg.Credentials.OCRSpaceKey)
	assert.Equal(t, "postgres://localhost/lingo", cfg.Storage.DSN)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "translation: [unclosed")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data directory"},
		{name: "unknown provider", mutate: func(c *Config) { c.Translation.Provider = "deepl" }, wantErr: "translation.provider"},
		{name: "cache size", mutate: func(c *Config) { c.Translation.CacheSize = 0 }, wantErr: "cache_size"},
		{name: "negative rate", mutate: func(c *Config) { c.Translation.RateLimit = -1 }, wantErr: "rate_limit"},
		{name: "unknown transcriber", mutate: func(c *Config) { c.Speech.Transcribers = []string{"siri"} }, wantErr: "siri"},
		{name: "unknown auth", mutate: func(c *Config) { c.Auth.Provider = "ldap" }, wantErr: "auth.provider"},
		{name: "history limit", mutate: func(c *Config) { c.History.NotesLimit = -1 }, wantErr: "history limits"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }, wantErr: "storage.dsn"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "bolt" }, wantErr: "storage.driver"},
		{name: "char limit", mutate: func(c *Config) { c.CharLimit = 0 }, wantErr: "char_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = "/tmp/lingo"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
