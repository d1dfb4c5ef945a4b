package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wordsmith/pkg/errors"
	"wordsmith/pkg/filter"
	"wordsmith/pkg/logger"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
)

const (
	DefaultProvider     = ProviderDeepSeek
	DefaultTemperature  = 0.1
	DefaultTimeout      = 120 * time.Second
	DefaultHistoryLimit = 200

	// KeyringService is the OS keyring service name; the user is the provider.
	KeyringService = "wordsmith"
)

type providerDefaults struct {
	model   string
	baseURL string
	envKeys []string
}

var providers = map[string]providerDefaults{
	ProviderDeepSeek: {
		model:   "deepseek-chat",
		baseURL: "https://api.deepseek.com",
		envKeys: []string{"DEEPSEEK_API_KEY"},
	},
	ProviderGemini: {
		model:   "gemini-2.5-flash",
		baseURL: "https://generativelanguage.googleapis.com",
		envKeys: []string{"GEMINI_API_KEY", "API_KEY"},
	},
	ProviderOpenAI: {
		model:   "gpt-4o-mini",
		baseURL: "https://api.openai.com/v1",
		envKeys: []string{"OPENAI_API_KEY"},
	},
}

// keyringGet is swapped in tests.
var keyringGet = keyring.Get

// Providers returns the supported provider names in a stable order.
func Providers() []string {
	return []string{ProviderDeepSeek, ProviderGemini, ProviderOpenAI}
}

// IsKnownProvider reports whether name is a supported provider.
func IsKnownProvider(name string) bool {
	_, ok := providers[name]
	return ok
}

// KeyEnvVar returns the primary environment variable holding a provider's key.
func KeyEnvVar(provider string) string {
	if d, ok := providers[provider]; ok && len(d.envKeys) > 0 {
		return d.envKeys[0]
	}
	return strings.ToUpper(provider) + "_API_KEY"
}

// BackendConfig selects and parameterises the conversion backend.
type BackendConfig struct {
	Provider    string        `yaml:"provider,omitempty"`
	Model       string        `yaml:"model,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	APIKey      string        `yaml:"api_key,omitempty"`
	Temperature *float64      `yaml:"temperature,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`

	keySource string
}

// TemperatureOrDefault returns the configured sampling temperature.
func (b BackendConfig) TemperatureOrDefault() float64 {
	if b.Temperature == nil {
		return DefaultTemperature
	}
	return *b.Temperature
}

// KeySource describes where the API key was found ("config", "env:NAME",
// "keyring") or is empty when no key is configured.
func (b BackendConfig) KeySource() string {
	return b.keySource
}

// Profile represents a named backend configuration
type Profile struct {
	Name    string        `yaml:"name"`
	Backend BackendConfig `yaml:"backend"`
}

type ClipboardConfig struct {
	// PlainFallback allows writing text/plain alone when the host clipboard
	// cannot hold both representations.
	PlainFallback bool `yaml:"plain_fallback,omitempty"`
}

type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Limit   int    `yaml:"limit,omitempty"`
}

// IsEnabled reports whether successful conversions are persisted.
func (h HistoryConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// Config holds the complete configuration including profiles
type Config struct {
	Backend       BackendConfig   `yaml:"backend"`
	Clipboard     ClipboardConfig `yaml:"clipboard,omitempty"`
	History       HistoryConfig   `yaml:"history,omitempty"`
	Profiles      []Profile       `yaml:"profiles,omitempty"`
	ActiveProfile string          `yaml:"active_profile,omitempty"`
}

// Overrides carries command-line selections applied on top of the file,
// environment and profile.
type Overrides struct {
	Profile  string
	Provider string
	Model    string
	Timeout  time.Duration
}

// Load loads the effective configuration: file, environment, profile,
// overrides, provider defaults and the API key, in that order. A missing key
// is not an error here; the backend reports it on first use.
func Load(o Overrides) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath, o)
}

// LoadFile reads the config file as stored, without environment or profile
// resolution. Use it for read-modify-write so resolved secrets never reach
// disk.
func LoadFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	cfg := &Config{}
	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wordsmith", "config.yaml"), nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return saveToPath(configPath, cfg)
}

func saveToPath(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	// may contain api_key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

// StoreKey saves a provider's API key in the OS keyring.
func StoreKey(provider, key string) error {
	if !IsKnownProvider(provider) {
		return errors.ConfigurationError(fmt.Sprintf("unknown provider '%s'", provider))
	}
	if strings.TrimSpace(key) == "" {
		return errors.ValidationError("API key must not be empty")
	}
	if err := keyring.Set(KeyringService, provider, key); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to store key in keyring", err)
	}
	return nil
}

// DeleteKey removes a provider's API key from the OS keyring.
func DeleteKey(provider string) error {
	if err := keyring.Delete(KeyringService, provider); err != nil && err != keyring.ErrNotFound {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to delete key from keyring", err)
	}
	return nil
}

// GetProfile returns a profile by name
func (c *Config) GetProfile(name string) (*Profile, error) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile '%s' not found", name)
}

// SetProfile sets the active profile
func (c *Config) SetProfile(name string) error {
	if name == "" {
		c.ActiveProfile = ""
		return nil
	}

	if _, err := c.GetProfile(name); err != nil {
		return err
	}

	c.ActiveProfile = name
	return nil
}

// AddProfile adds a new profile
func (c *Config) AddProfile(profile Profile) error {
	if _, err := c.GetProfile(profile.Name); err == nil {
		return fmt.Errorf("profile '%s' already exists", profile.Name)
	}
	if profile.Backend.Provider != "" && !IsKnownProvider(profile.Backend.Provider) {
		return fmt.Errorf("unknown provider '%s'", profile.Backend.Provider)
	}

	c.Profiles = append(c.Profiles, profile)
	return nil
}

// RemoveProfile removes a profile
func (c *Config) RemoveProfile(name string) error {
	if c.ActiveProfile == name {
		return fmt.Errorf("cannot remove active profile '%s'", name)
	}

	for i, p := range c.Profiles {
		if p.Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile '%s' not found", name)
}

// ListProfiles returns a list of profile names
func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// IsProfileActive returns true if the given profile is active
func (c *Config) IsProfileActive(name string) bool {
	return c.ActiveProfile == name
}

// HistoryPath returns the history database path, defaulting to the user
// cache directory.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "wordsmith", "history.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && parsed
}

func loadFromPath(configPath string, o Overrides) (*Config, error) {
	cfg := &Config{}

	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)

	targetProfile := cfg.ActiveProfile
	if o.Profile != "" {
		targetProfile = o.Profile
	}
	if targetProfile != "" {
		profile, err := cfg.GetProfile(targetProfile)
		if err != nil {
			return nil, errors.ConfigurationError(err.Error())
		}
		applyBackend(&cfg.Backend, profile.Backend)
		cfg.ActiveProfile = targetProfile
	}

	applyBackend(&cfg.Backend, BackendConfig{
		Provider: o.Provider,
		Model:    o.Model,
		Timeout:  o.Timeout,
	})

	applyDefaults(cfg)
	resolveAPIKey(&cfg.Backend)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("provider", cfg.Backend.Provider).
		Str("model", cfg.Backend.Model).
		Str("key", logger.MaskSecret(cfg.Backend.APIKey)).
		Str("key_source", cfg.Backend.keySource).
		Msg("configuration loaded")

	return cfg, nil
}

// applyBackend overlays the non-empty fields of src onto dst. Switching
// provider drops the model, endpoint and key that belonged to the old one.
func applyBackend(dst *BackendConfig, src BackendConfig) {
	if src.Provider != "" && src.Provider != dst.Provider {
		dst.Provider = src.Provider
		dst.Model = ""
		dst.BaseURL = ""
		dst.APIKey = ""
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Temperature != nil {
		t := *src.Temperature
		dst.Temperature = &t
	}
	if src.Timeout > 0 {
		dst.Timeout = src.Timeout
	}
}

// loadConfigFile reads and parses the config file from the given path
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		// No file: environment and defaults only.
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

// applyEnvironmentOverrides fills blank settings from the environment
func applyEnvironmentOverrides(cfg *Config) {
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = getEnv("WORDSMITH_PROVIDER", "")
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = getEnv("WORDSMITH_MODEL", "")
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = getEnv("WORDSMITH_BASE_URL", "")
	}
	if cfg.Backend.Timeout == 0 {
		if d, err := time.ParseDuration(os.Getenv("WORDSMITH_TIMEOUT")); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if !cfg.Clipboard.PlainFallback {
		cfg.Clipboard.PlainFallback = getEnvBool("WORDSMITH_CLIPBOARD_PLAIN_FALLBACK")
	}
	if cfg.History.Path == "" {
		cfg.History.Path = getEnv("WORDSMITH_HISTORY_PATH", "")
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = getEnvInt("WORDSMITH_HISTORY_LIMIT", DefaultHistoryLimit)
	}

	if profileEnv := os.Getenv("WORDSMITH_PROFILE"); profileEnv != "" {
		cfg.ActiveProfile = profileEnv
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = DefaultProvider
	}
	if d, ok := providers[cfg.Backend.Provider]; ok {
		if cfg.Backend.Model == "" {
			cfg.Backend.Model = d.model
		}
		if cfg.Backend.BaseURL == "" {
			cfg.Backend.BaseURL = d.baseURL
		}
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultTimeout
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = DefaultHistoryLimit
	}
}

// resolveAPIKey looks for the key in the config, then the provider's
// environment variables, then the OS keyring.
func resolveAPIKey(b *BackendConfig) {
	if b.APIKey != "" {
		b.keySource = "config"
		return
	}
	for _, name := range providers[b.Provider].envKeys {
		if v := os.Getenv(name); v != "" {
			b.APIKey = v
			b.keySource = "env:" + name
			return
		}
	}
	if v, err := keyringGet(KeyringService, b.Provider); err == nil && v != "" {
		b.APIKey = v
		b.keySource = "keyring"
		return
	} else if err != nil && err != keyring.ErrNotFound {
		logger.Debug().Err(err).Msg("keyring lookup failed")
	}
}

// validateConfig rejects settings no backend could use
func validateConfig(cfg *Config) error {
	if !IsKnownProvider(cfg.Backend.Provider) {
		e := errors.ConfigurationError(fmt.Sprintf("unknown provider '%s' (supported: %s)",
			cfg.Backend.Provider, strings.Join(Providers(), ", ")))
		if guess, ok := filter.Closest(cfg.Backend.Provider, Providers(), 2); ok {
			e.Suggestion = fmt.Sprintf("Did you mean '%s'?", guess)
		}
		return e
	}
	if t := cfg.Backend.TemperatureOrDefault(); t < 0 || t > 2 {
		return errors.ConfigurationError(fmt.Sprintf("temperature %.2f out of range [0, 2]", t))
	}
	if cfg.Backend.Timeout < 0 {
		return errors.ConfigurationError("timeout must be positive")
	}
	if cfg.History.Limit < 0 {
		return errors.ConfigurationError("history limit must not be negative")
	}
	return nil
}
