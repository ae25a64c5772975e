// Package config handles configuration loading with hot-reload support.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/promptomatic/promptomatic/internal/providers"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter" yaml:"openrouter"`
	Models     ModelsConfig     `mapstructure:"models" yaml:"models"`
	Timeouts   TimeoutsConfig   `mapstructure:"timeouts" yaml:"timeouts"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// OpenRouterConfig holds provider credentials. APIKey supports ${ENV_VAR}
// references resolved at use time, never at load time, so secrets stay out
// of the config file on disk.
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// ModelsConfig names the primary/fallback completion models.
type ModelsConfig struct {
	Primary  string `mapstructure:"primary" yaml:"primary"`
	Fallback string `mapstructure:"fallback" yaml:"fallback"`
}

// TimeoutsConfig bounds individual completion attempts, in seconds.
type TimeoutsConfig struct {
	RequestSeconds   int `mapstructure:"request_seconds" yaml:"request_seconds"`
	ReasoningSeconds int `mapstructure:"reasoning_seconds" yaml:"reasoning_seconds"`
}

// DatabaseConfig holds SQLite settings. An empty Path means the default
// location under the home directory.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8787,
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  "${OPENROUTER_API_KEY}",
			BaseURL: providers.OpenRouterBaseURL,
		},
		Models: ModelsConfig{
			Primary:  providers.DefaultPrimaryModel,
			Fallback: providers.DefaultFallbackModel,
		},
		Timeouts: TimeoutsConfig{
			RequestSeconds:   30,
			ReasoningSeconds: 120,
		},
	}
}

// ProviderConfig converts the config into the client configuration,
// resolving ${ENV_VAR} references in the API key.
func (c *Config) ProviderConfig() providers.OpenRouterConfig {
	return providers.OpenRouterConfig{
		APIKey:  ResolveEnvVars(c.OpenRouter.APIKey),
		BaseURL: c.OpenRouter.BaseURL,
		Models: providers.ModelChain{
			Primary:  c.Models.Primary,
			Fallback: c.Models.Fallback,
		},
		Timeout:          time.Duration(c.Timeouts.RequestSeconds) * time.Second,
		ReasoningTimeout: time.Duration(c.Timeouts.ReasoningSeconds) * time.Second,
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("openrouter", defaults.OpenRouter)
	viper.SetDefault("models", defaults.Models)
	viper.SetDefault("timeouts", defaults.Timeouts)
	viper.SetDefault("database", defaults.Database)

	// Environment variables with PROMPTOMATIC_ prefix
	viper.SetEnvPrefix("PROMPTOMATIC")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.promptomatic")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Promptomatic configuration
# The API key uses ${ENV_VAR} syntax to reference an environment variable
# Set it in your shell: export OPENROUTER_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
