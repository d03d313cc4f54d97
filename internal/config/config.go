package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SITUS"

type Config struct {
	ListenAddr      string
	RootURL         string
	StaticDir       string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	DatabaseDriver string
	DatabaseDSN    string
	DatabaseDebug  bool

	IndexerEndpoint  string
	IndexerAuthToken string
	IndexerPageSize  int
	IndexerTimeout   time.Duration

	HighlightLightStyle string
	HighlightDarkStyle  string

	UpdateToken  string
	Announcement string
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("root_url", "")
	v.SetDefault("static_dir", "")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_dsn", "file:situs.db?cache=shared")
	v.SetDefault("database_debug", false)
	v.SetDefault("indexer_endpoint", "http://localhost:8000/graphql")
	v.SetDefault("indexer_auth_token", "")
	v.SetDefault("indexer_page_size", 500)
	v.SetDefault("indexer_timeout", 15*time.Second)
	v.SetDefault("highlight_light_style", "github")
	v.SetDefault("highlight_dark_style", "dracula")
	v.SetDefault("update_token", "")
	v.SetDefault("announcement", "")
}

// New returns a viper instance reading SITUS_* environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func Load(v *viper.Viper) Config {
	return Config{
		ListenAddr:          getString(v, "listen_addr", ":8080"),
		RootURL:             strings.TrimRight(strings.TrimSpace(v.GetString("root_url")), "/"),
		StaticDir:           strings.TrimSpace(v.GetString("static_dir")),
		ShutdownTimeout:     getDuration(v, "shutdown_timeout", 10*time.Second),
		LogLevel:            getString(v, "log_level", "info"),
		LogFormat:           getString(v, "log_format", "console"),
		DatabaseDriver:      strings.ToLower(getString(v, "database_driver", "sqlite")),
		DatabaseDSN:         getString(v, "database_dsn", "file:situs.db?cache=shared"),
		DatabaseDebug:       v.GetBool("database_debug"),
		IndexerEndpoint:     getString(v, "indexer_endpoint", "http://localhost:8000/graphql"),
		IndexerAuthToken:    strings.TrimSpace(v.GetString("indexer_auth_token")),
		IndexerPageSize:     getInt(v, "indexer_page_size", 500),
		IndexerTimeout:      getDuration(v, "indexer_timeout", 15*time.Second),
		HighlightLightStyle: getString(v, "highlight_light_style", "github"),
		HighlightDarkStyle:  getString(v, "highlight_dark_style", "dracula"),
		UpdateToken:         strings.TrimSpace(v.GetString("update_token")),
		Announcement:        strings.TrimSpace(v.GetString("announcement")),
	}
}

func getString(v *viper.Viper, key string, fallback string) string {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return fallback
	}

	return value
}

func getInt(v *viper.Viper, key string, fallback int) int {
	parsed := v.GetInt(key)
	if parsed < 1 {
		return fallback
	}

	return parsed
}

func getDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	parsed := v.GetDuration(key)
	if parsed <= 0 {
		return fallback
	}

	return parsed
}
