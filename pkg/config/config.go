package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Graph   GraphConfig
	Refresh RefreshConfig
	Notion  NotionConfig
	Export  ExportConfig
	State   StateConfig
	Log     LogConfig
}

// GraphConfig holds the education-platform API credential and endpoints.
type GraphConfig struct {
	Token          string
	SessionID      string
	BaseURL        string
	AssignmentsURL string
	HTTPTimeout    time.Duration
}

// RefreshConfig controls the external token-extractor side channel.
type RefreshConfig struct {
	Command      string
	AutoDisabled bool
}

// NotionConfig identifies the upsert target. An empty token or database ID
// means the upload stage is skipped.
type NotionConfig struct {
	BaseURL     string
	Token       string
	DatabaseID  string
	Version     string
	MinInterval time.Duration
}

type ExportConfig struct {
	Dir string
}

type StateConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env plus process environment with fill-gaps semantics:
// variables already present in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return read()
}

// Reload re-reads .env with override semantics so values freshly written by
// the token extractor replace any stale in-process copies.
func Reload() (*Config, error) {
	_ = godotenv.Overload()
	return read()
}

func read() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Graph = GraphConfig{
		Token:          v.GetString("GRAPH_TOKEN"),
		SessionID:      v.GetString("GRAPH_SESSION_ID"),
		BaseURL:        v.GetString("GRAPH_BASE_URL"),
		AssignmentsURL: v.GetString("GRAPH_ASSIGNMENTS_URL"),
		HTTPTimeout:    parseDuration(v.GetString("HTTP_TIMEOUT"), 30*time.Second),
	}

	cfg.Refresh = RefreshConfig{
		Command:      v.GetString("REFRESH_COMMAND"),
		AutoDisabled: v.GetBool("DISABLE_AUTO_REFRESH"),
	}

	cfg.Notion = NotionConfig{
		BaseURL:     v.GetString("NOTION_BASE_URL"),
		Token:       v.GetString("NOTION_TOKEN"),
		DatabaseID:  v.GetString("NOTION_DATABASE_ID"),
		Version:     v.GetString("NOTION_VERSION"),
		MinInterval: parseDuration(v.GetString("NOTION_MIN_INTERVAL"), 350*time.Millisecond),
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}
	cfg.State = StateConfig{Path: v.GetString("STATE_FILE")}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("GRAPH_TOKEN", "")
	v.SetDefault("GRAPH_SESSION_ID", "")
	v.SetDefault("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0")
	v.SetDefault("GRAPH_ASSIGNMENTS_URL", "")
	v.SetDefault("HTTP_TIMEOUT", "30s")

	v.SetDefault("REFRESH_COMMAND", "")
	v.SetDefault("DISABLE_AUTO_REFRESH", false)

	v.SetDefault("NOTION_BASE_URL", "https://api.notion.com/v1")
	v.SetDefault("NOTION_TOKEN", "")
	v.SetDefault("NOTION_DATABASE_ID", "")
	v.SetDefault("NOTION_VERSION", "2022-06-28")
	v.SetDefault("NOTION_MIN_INTERVAL", "350ms")

	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("STATE_FILE", "./state.json")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// IsCI reports whether the process runs under a recognised CI environment,
// where launching an interactive browser refresh can never succeed.
func IsCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE"} {
		if val := os.Getenv(key); val != "" && !strings.EqualFold(val, "false") {
			return true
		}
	}
	return false
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
