// Package config handles configuration loading and validation for lingo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverJSONFile = "jsonfile"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Auth providers.
const (
	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

// Transcriber names accepted in speech.transcribers.
const (
	TranscriberWit  = "wit"
	TranscriberVosk = "vosk"
	TranscriberRev  = "rev"
)

// Translation provider names accepted in translation.provider.
const (
	ProviderMyMemory = "mymemory"
	ProviderLocal    = "local"
)

// DefaultCardTemplate renders a history record for `history show`.
const DefaultCardTemplate = `# {{ .SourceName }} → {{ .TargetName }}

{{ quote .SourceText }}

{{ .TranslatedText }}

_{{ date .Timestamp }} · {{ .ID }}_
`

// Config holds the application configuration.
type Config struct {
	Translation TranslationConfig `yaml:"translation"`
	Speech      SpeechConfig      `yaml:"speech"`
	Document    DocumentConfig    `yaml:"document"`
	Auth        AuthConfig        `yaml:"auth"`
	History     HistoryConfig     `yaml:"history"`
	Storage     StorageConfig     `yaml:"storage"`
	Server      ServerConfig      `yaml:"server"`
	Templates   TemplatesConfig   `yaml:"templates"`
	// CharLimit caps typed input, in characters.
	CharLimit   int         `yaml:"char_limit"`
	Credentials Credentials `yaml:"-"` // read from the environment
	DataDir     string      `yaml:"-"` // set by caller, not from config file
}

// TranslationConfig selects and tunes the translation providers.
type TranslationConfig struct {
	Provider    string  `yaml:"provider"`
	MyMemoryURL string  `yaml:"mymemory_url"`
	LocalURL    string  `yaml:"local_url"`
	LocalModel  string  `yaml:"local_model"`
	CacheSize   int     `yaml:"cache_size"`
	RateLimit   float64 `yaml:"rate_limit"` // requests per second, 0 disables
	Burst       int     `yaml:"burst"`
}

// SpeechConfig lists the transcribers in the order they are tried.
type SpeechConfig struct {
	Transcribers []string `yaml:"transcribers"`
	WitURL       string   `yaml:"wit_url"`
	VoskURL      string   `yaml:"vosk_url"`
	RevURL       string   `yaml:"rev_url"`
}

// DocumentConfig configures text extraction.
type DocumentConfig struct {
	PDFToTextPath string `yaml:"pdftotext_path"`
	OCRURL        string `yaml:"ocr_url"`
	OCRLanguage   string `yaml:"ocr_language"`
	// PDFFont is a TrueType font for `document --output x.pdf`, needed for
	// scripts outside Latin-1 such as Gujarati or Hindi.
	PDFFont string `yaml:"pdf_font"`
}

// AuthConfig selects the identity provider.
type AuthConfig struct {
	Provider    string `yaml:"provider"`
	FirebaseURL string `yaml:"firebase_url"`
}

// HistoryConfig holds the partition caps.
type HistoryConfig struct {
	RecentLimit int `yaml:"recent_limit"`
	NotesLimit  int `yaml:"notes_limit"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig configures `lingo serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// TemplatesConfig holds output templates.
type TemplatesConfig struct {
	Card string `yaml:"card"`
}

// Credentials holds API keys. They never live in the config file.
type Credentials struct {
	WitAIKey       string `envconfig:"WIT_AI_KEY"`
	RevAIKey       string `envconfig:"REV_AI_KEY"`
	OCRSpaceKey    string `envconfig:"OCR_SPACE_KEY"`
	FirebaseAPIKey string `envconfig:"FIREBASE_API_KEY"`
	MyMemoryEmail  string `envconfig:"MYMEMORY_EMAIL"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Translation: TranslationConfig{
			Provider:    ProviderMyMemory,
			MyMemoryURL: "https://api.mymemory.translated.net",
			LocalURL:    "http://127.0.0.1:8845/v1",
			LocalModel:  "tencent/HY-MT1.5-7B",
			CacheSize:   256,
			RateLimit:   5,
			Burst:       5,
		},
		Speech: SpeechConfig{
			Transcribers: []string{TranscriberWit, TranscriberVosk},
			WitURL:       "https://api.wit.ai",
			VoskURL:      "http://localhost:2700",
			RevURL:       "https://api.rev.ai",
		},
		Document: DocumentConfig{
			PDFToTextPath: "pdftotext",
			OCRURL:        "https://api.ocr.space/parse/image",
		},
		Auth: AuthConfig{
			Provider:    AuthLocal,
			FirebaseURL: "https://identitytoolkit.googleapis.com/v1",
		},
		History: HistoryConfig{
			RecentLimit: 10,
			NotesLimit:  50,
		},
		Storage: StorageConfig{
			Driver: DriverJSONFile,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7878",
		},
		Templates: TemplatesConfig{
			Card: DefaultCardTemplate,
		},
		CharLimit: 5000,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
// Credentials are always read from the environment.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if err := envconfig.Process("", &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Translation.Provider == "" {
		c.Translation.Provider = defaults.Translation.Provider
	}
	if c.Translation.MyMemoryURL == "" {
		c.Translation.MyMemoryURL = defaults.Translation.MyMemoryURL
	}
	if c.Translation.LocalURL == "" {
		c.Translation.LocalURL = defaults.Translation.LocalURL
	}
	if c.Translation.LocalModel == "" {
		c.Translation.LocalModel = defaults.Translation.LocalModel
	}
	if c.Translation.CacheSize == 0 {
		c.Translation.CacheSize = defaults.Translation.CacheSize
	}
	if c.Translation.Burst == 0 {
		c.Translation.Burst = defaults.Translation.Burst
	}
	if c.Speech.Transcribers == nil {
		c.Speech.Transcribers = defaults.Speech.Transcribers
	}
	if c.Speech.WitURL == "" {
		c.Speech.WitURL = defaults.Speech.WitURL
	}
	if c.Speech.VoskURL == "" {
		c.Speech.VoskURL = defaults.Speech.VoskURL
	}
	if c.Speech.RevURL == "" {
		c.Speech.RevURL = defaults.Speech.RevURL
	}
	if c.Document.PDFToTextPath == "" {
		c.Document.PDFToTextPath = defaults.Document.PDFToTextPath
	}
	if c.Document.OCRURL == "" {
		c.Document.OCRURL = defaults.Document.OCRURL
	}
	if c.Auth.Provider == "" {
		c.Auth.Provider = defaults.Auth.Provider
	}
	if c.Auth.FirebaseURL == "" {
		c.Auth.FirebaseURL = defaults.Auth.FirebaseURL
	}
	if c.History.RecentLimit == 0 {
		c.History.RecentLimit = defaults.History.RecentLimit
	}
	if c.History.NotesLimit == 0 {
		c.History.NotesLimit = defaults.History.NotesLimit
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = c.Credentials.DatabaseURL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Templates.Card == "" {
		c.Templates.Card = defaults.Templates.Card
	}
	if c.CharLimit == 0 {
		c.CharLimit = defaults.CharLimit
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !slices.Contains(providerNames, c.Translation.Provider) {
		return fmt.Errorf("translation.provider %q is not one of %v", c.Translation.Provider, providerNames)
	}

	if c.Translation.CacheSize < 1 {
		return fmt.Errorf("translation.cache_size must be at least 1")
	}

	if c.Translation.RateLimit < 0 {
		return fmt.Errorf("translation.rate_limit cannot be negative")
	}

	for _, name := range c.Speech.Transcribers {
		if !slices.Contains(transcriberNames, name) {
			return fmt.Errorf("speech.transcribers: unknown transcriber %q", name)
		}
	}

	switch c.Auth.Provider {
	case AuthLocal, AuthFirebase:
	default:
		return fmt.Errorf("auth.provider %q must be %q or %q", c.Auth.Provider, AuthLocal, AuthFirebase)
	}

	if c.History.RecentLimit < 1 || c.History.NotesLimit < 1 {
		return fmt.Errorf("history limits must be at least 1")
	}

	switch c.Storage.Driver {
	case DriverJSONFile, DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}

	if c.CharLimit < 1 {
		return fmt.Errorf("char_limit must be at least 1")
	}

	return nil
}

var (
	providerNames    = []string{ProviderMyMemory, ProviderLocal}
	transcriberNames = []string{TranscriberWit, TranscriberVosk, TranscriberRev}
)

// StoreFile returns the path to the key-value JSON file.
func (c *Config) StoreFile() string {
	return filepath.Join(c.DataDir, "lingo.json")
}
