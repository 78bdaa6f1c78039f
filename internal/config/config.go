package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every setting in the environment (LEADWIZARD_FLOW_PATH, ...).
const EnvPrefix = "LEADWIZARD"

// Config holds the runtime settings of every command.
type Config struct {
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Flow struct {
		Path            string `mapstructure:"path"`
		StartNode       string `mapstructure:"start_node"`
		FallbackNode    string `mapstructure:"fallback_node"`
		SelectionMarker string `mapstructure:"selection_marker"`
	} `mapstructure:"flow"`

	Redis struct {
		URL        string        `mapstructure:"url"`
		Prefix     string        `mapstructure:"prefix"`
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"redis"`

	Sessions struct {
		EncryptionKey string   `mapstructure:"encryption_key"`
		FallbackKeys  []string `mapstructure:"fallback_keys"`
		MaskAnswers   []string `mapstructure:"mask_answers"`
	} `mapstructure:"sessions"`

	Leads struct {
		// Driver is one of auto, postgres, sqlite, memory.
		Driver      string `mapstructure:"driver"`
		DatabaseURL string `mapstructure:"database_url"`
		SQLitePath  string `mapstructure:"sqlite_path"`
	} `mapstructure:"leads"`

	LLM struct {
		APIKey       string        `mapstructure:"api_key"`
		BaseURL      string        `mapstructure:"base_url"`
		Model        string        `mapstructure:"model"`
		Temperature  float64       `mapstructure:"temperature"`
		SystemPrompt string        `mapstructure:"system_prompt"`
		Timeout      time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`

	Zip struct {
		CSVPath string   `mapstructure:"csv_path"`
		APIURL  string   `mapstructure:"api_url"`
		States  []string `mapstructure:"states"`
	} `mapstructure:"zip"`

	Notify struct {
		WebhookURL string `mapstructure:"webhook_url"`
		Alerts     bool   `mapstructure:"alerts"`
	} `mapstructure:"notify"`

	Metrics bool `mapstructure:"metrics"`
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// legacyEnv maps config keys to the unprefixed variable names deployments already use.
var legacyEnv = map[string]string{
	"port":               "PORT",
	"log_level":          "LOG_LEVEL",
	"flow.path":          "FLOW_PATH",
	"redis.url":          "REDIS_URL",
	"leads.database_url": "DATABASE_URL",
	"llm.api_key":        "GROQ_API_KEY",
	"zip.csv_path":       "ZIP_CSV_PATH",
	"notify.webhook_url": "N8N_WEBHOOK_URL",
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", "8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("flow.path", "flows/premium.json")
	v.SetDefault("flow.start_node", "start")
	v.SetDefault("flow.fallback_node", "collect_contact")
	v.SetDefault("flow.selection_marker", "__CLICKED__")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.prefix", "ctx:")
	v.SetDefault("redis.session_ttl", 24*time.Hour)

	v.SetDefault("sessions.encryption_key", "")
	v.SetDefault("sessions.fallback_keys", []string{})
	v.SetDefault("sessions.mask_answers", []string{})

	v.SetDefault("leads.driver", "auto")
	v.SetDefault("leads.database_url", "")
	v.SetDefault("leads.sqlite_path", "")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "meta-llama/llama-4-scout-17b-16e-instruct")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.system_prompt", "")
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("zip.csv_path", "data/zips.csv")
	v.SetDefault("zip.api_url", "https://api.zippopotam.us/us")
	v.SetDefault("zip.states", []string{"MS", "AL", "LA", "GA"})

	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.alerts", true)

	v.SetDefault("metrics", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		// Prefixed variable first, then the legacy name.
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}

	return v
}

// Load reads .env (if present), then the optional config file, then the environment.
// An empty configFile searches for leadwizard.yaml in the working directory and ./config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("leadwizard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Leads.Driver {
	case "auto", "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid leads driver %q (want auto, postgres, sqlite or memory)", c.Leads.Driver)
	}
	if c.Leads.Driver == "postgres" && c.Leads.DatabaseURL == "" {
		return errors.New("leads driver postgres requires a database url")
	}
	if c.Leads.Driver == "sqlite" && c.Leads.SQLitePath == "" {
		return errors.New("leads driver sqlite requires a sqlite path")
	}
	if c.Flow.Path == "" {
		return errors.New("flow path is required")
	}
	return nil
}

// LeadDriver resolves "auto": postgres when a database url is set, sqlite when a
// path is set, memory otherwise.
func (c *Config) LeadDriver() string {
	if c.Leads.Driver != "auto" {
		return c.Leads.Driver
	}
	switch {
	case c.Leads.DatabaseURL != "":
		return "postgres"
	case c.Leads.SQLitePath != "":
		return "sqlite"
	default:
		return "memory"
	}
}
