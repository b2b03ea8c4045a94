package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath        = "config.yaml"
	defaultPort              = "8000"
	defaultShutdownTimeout   = 10
	defaultLLMProvider       = "openai"
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultGroqModel         = "llama-3.3-70b-versatile"
	defaultRankerTemperature = 0.7
	defaultBoardTemperature  = 0.8
	defaultComicStyle        = "modern editorial comic, bold lines, vibrant colors"
	defaultMetadataTimeout   = 10
	defaultImageModel        = "gemini-2.5-flash-image"
	defaultImageConcurrency  = 1
	defaultOutputDir         = "./output"
	defaultGCSPrefix         = "panels"
	defaultDocTitlePrefix    = "JetSki: "
	defaultFolderPrefix      = "JetSki - "
	defaultTokenPath         = "./google_token.json"
	defaultStoreDriver       = "sqlite"
	defaultSQLitePath        = "data/jetski.db"
	defaultHistoryLimit      = 10
)

var defaultLanguages = []string{"en", "en-US", "en-GB", "en-CA"}

type Config struct {
	OpenAIAPIKey       string `yaml:"-"`
	GroqAPIKey         string `yaml:"-"`
	GoogleAPIKey       string `yaml:"-"`
	GoogleClientID     string `yaml:"-"`
	GoogleClientSecret string `yaml:"-"`
	GoogleTokenPath    string `yaml:"-"`
	DatabaseURL        string `yaml:"-"`
	GCSBucket          string `yaml:"-"`
	GCPProject         string `yaml:"-"`

	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Ranker     RankerConfig     `yaml:"ranker"`
	Storyboard StoryboardConfig `yaml:"storyboard"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Images     ImagesConfig     `yaml:"images"`
	Publish    PublishConfig    `yaml:"publish"`
	Store      StoreConfig      `yaml:"store"`
}

type ServerConfig struct {
	Port            string `yaml:"port"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"`
	HistoryLimit    int    `yaml:"history_limit"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "groq"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

type RankerConfig struct {
	// MaxTranscriptChars truncates the transcript sent to the model; 0 sends it whole.
	MaxTranscriptChars int     `yaml:"max_transcript_chars"`
	Temperature        float64 `yaml:"temperature"`
}

type StoryboardConfig struct {
	Temperature  float64 `yaml:"temperature"`
	DefaultStyle string  `yaml:"default_style"`
}

type YouTubeConfig struct {
	Languages       []string `yaml:"languages"`
	MetadataTimeout int      `yaml:"metadata_timeout"`
	BaseURL         string   `yaml:"base_url"`
}

type ImagesConfig struct {
	Model       string `yaml:"model"`
	Concurrency int    `yaml:"concurrency"`
	OutputDir   string `yaml:"output_dir"`
	SaveLocal   bool   `yaml:"save_local"`
	GCSPrefix   string `yaml:"gcs_prefix"`
}

type PublishConfig struct {
	DocTitlePrefix string `yaml:"doc_title_prefix"`
	FolderPrefix   string `yaml:"folder_prefix"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleTokenPath:    getEnvOrDefault("GOOGLE_TOKEN_PATH", defaultTokenPath),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCPProject:         os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	if err := loadYAMLConfig(cfg, defaultConfigPath); err != nil {
		return nil, err
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if cfg.GCPProject != "" && cfg.missingSecrets() {
		loadSecrets(ctx, cfg)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No config.yaml found, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Default returns a config with every section set to its default.
func Default() *Config {
	cfg := &Config{GoogleTokenPath: defaultTokenPath}
	applyDefaults(cfg)
	return cfg
}

// WriteYAML writes the non-secret sections to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(cfg)
	applyLLMDefaults(cfg)
	applyRankerDefaults(cfg)
	applyStoryboardDefaults(cfg)
	applyYouTubeDefaults(cfg)
	applyImagesDefaults(cfg)
	applyPublishDefaults(cfg)
	applyStoreDefaults(cfg)
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Server.HistoryLimit == 0 {
		cfg.Server.HistoryLimit = defaultHistoryLimit
	}
}

func applyLLMDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaultLLMProvider
		if cfg.OpenAIAPIKey == "" && cfg.GroqAPIKey != "" {
			cfg.LLM.Provider = "groq"
		}
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultOpenAIModel
		if cfg.LLM.Provider == "groq" {
			cfg.LLM.Model = defaultGroqModel
		}
	}
}

func applyRankerDefaults(cfg *Config) {
	if cfg.Ranker.Temperature == 0 {
		cfg.Ranker.Temperature = defaultRankerTemperature
	}
}

func applyStoryboardDefaults(cfg *Config) {
	if cfg.Storyboard.Temperature == 0 {
		cfg.Storyboard.Temperature = defaultBoardTemperature
	}
	if cfg.Storyboard.DefaultStyle == "" {
		cfg.Storyboard.DefaultStyle = defaultComicStyle
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if len(cfg.YouTube.Languages) == 0 {
		cfg.YouTube.Languages = append([]string(nil), defaultLanguages...)
	}
	if cfg.YouTube.MetadataTimeout == 0 {
		cfg.YouTube.MetadataTimeout = defaultMetadataTimeout
	}
}

func applyImagesDefaults(cfg *Config) {
	if cfg.Images.Model == "" {
		cfg.Images.Model = defaultImageModel
	}
	if cfg.Images.Concurrency <= 0 {
		cfg.Images.Concurrency = defaultImageConcurrency
	}
	if cfg.Images.OutputDir == "" {
		cfg.Images.OutputDir = defaultOutputDir
	}
	if cfg.Images.GCSPrefix == "" {
		cfg.Images.GCSPrefix = defaultGCSPrefix
	}
}

func applyPublishDefaults(cfg *Config) {
	if cfg.Publish.DocTitlePrefix == "" {
		cfg.Publish.DocTitlePrefix = defaultDocTitlePrefix
	}
	if cfg.Publish.FolderPrefix == "" {
		cfg.Publish.FolderPrefix = defaultFolderPrefix
	}
}

func applyStoreDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = defaultStoreDriver
		if cfg.DatabaseURL != "" {
			cfg.Store.Driver = "postgres"
		}
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultSQLitePath
	}
}

// GooglePublishingConfigured reports whether OAuth credentials for docs/drive exist.
func (c *Config) GooglePublishingConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
