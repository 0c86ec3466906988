// Package config loads daybook configuration from a config file and
// environment variables. The resulting Config handle is constructed once at
// startup and passed explicitly into every component that needs it.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Storage    Storage
	HTTP       HTTP
	Classifier Classifier
	Weather    Weather
	Watch      Watch
}

type Storage struct {
	// Dir is the base directory holding the database, config file, and
	// scratch space for zip extraction. Empty means unconfigured.
	Dir string

	// DBMaxOpenConns limits open database connections. 1 serializes all
	// access; 0 uses the sql.DB default.
	DBMaxOpenConns int
	DBMaxIdleConns int
}

type HTTP struct {
	Host string
	Port int
}

type Classifier struct {
	// Endpoint of the external label service. Empty disables analysis.
	Endpoint string
	Token    string

	// EmotionK and ContextK are the top-k label counts requested per
	// classification kind.
	EmotionK int
	ContextK int

	Timeout time.Duration

	// RequestsPerSecond caps outbound classify calls.
	RequestsPerSecond float64
}

type Weather struct {
	// Enabled gates weather enrichment of manually added entries.
	Enabled  bool
	Endpoint string
	APIKey   string
	// Location is a "lat,lon" pair or city name, passed through verbatim.
	Location string
	Timeout  time.Duration
}

type Watch struct {
	// Dir is the drop directory monitored by the watch command.
	// Defaults to <storage dir>/inbox.
	Dir string
}

// EnvPrefix namespaces daybook environment variables (e.g. DAYBOOK_HTTP_PORT).
const EnvPrefix = "DAYBOOK"

// DefaultBaseDir returns ~/.daybook, the default storage directory.
func DefaultBaseDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".daybook"), nil
}

// Load reads configuration from baseDir/config.yaml (if present) and the
// environment. Environment variables win over file values, file values win
// over defaults.
func Load(baseDir string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("storage.dir", baseDir)
	v.SetDefault("storage.db_max_open_conns", 0)
	v.SetDefault("storage.db_max_idle_conns", 0)

	v.SetDefault("http.host", "localhost")
	v.SetDefault("http.port", 8080)

	v.SetDefault("classifier.endpoint", "")
	v.SetDefault("classifier.token", "")
	v.SetDefault("classifier.emotion_k", 1)
	v.SetDefault("classifier.context_k", 3)
	v.SetDefault("classifier.timeout", "30s")
	v.SetDefault("classifier.requests_per_second", 2.0)

	v.SetDefault("weather.enabled", false)
	v.SetDefault("weather.endpoint", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.location", "")
	v.SetDefault("weather.timeout", "10s")

	v.SetDefault("watch.dir", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(baseDir)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has a default.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		Storage: Storage{
			Dir:            v.GetString("storage.dir"),
			DBMaxOpenConns: v.GetInt("storage.db_max_open_conns"),
			DBMaxIdleConns: v.GetInt("storage.db_max_idle_conns"),
		},
		HTTP: HTTP{
			Host: v.GetString("http.host"),
			Port: v.GetInt("http.port"),
		},
		Classifier: Classifier{
			Endpoint:          v.GetString("classifier.endpoint"),
			Token:             v.GetString("classifier.token"),
			EmotionK:          v.GetInt("classifier.emotion_k"),
			ContextK:          v.GetInt("classifier.context_k"),
			Timeout:           v.GetDuration("classifier.timeout"),
			RequestsPerSecond: v.GetFloat64("classifier.requests_per_second"),
		},
		Weather: Weather{
			Enabled:  v.GetBool("weather.enabled"),
			Endpoint: v.GetString("weather.endpoint"),
			APIKey:   v.GetString("weather.api_key"),
			Location: v.GetString("weather.location"),
			Timeout:  v.GetDuration("weather.timeout"),
		},
		Watch: Watch{
			Dir: v.GetString("watch.dir"),
		},
	}

	if cfg.Watch.Dir == "" && cfg.Storage.Dir != "" {
		cfg.Watch.Dir = filepath.Join(cfg.Storage.Dir, "inbox")
	}

	return cfg, nil
}
