// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the assistant.
//
// Configuration lives in a TOML file with sensible defaults, environment
// variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.assistant/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete assistant configuration.
type Config struct {
	Version string `toml:"version"`

	// Preferences holds per-user settings that flow into every dispatch.
	Preferences UserPreferences `toml:"preferences"`

	// Providers lists the AI backends in fallback priority order.
	Providers []ProviderConfig `toml:"providers"`

	// Speech configures the voice recognition and synthesis endpoint.
	Speech SpeechConfig `toml:"speech"`

	// Attachments configures file upload handling.
	Attachments AttachmentConfig `toml:"attachments"`

	// Storage configures durable message persistence.
	Storage StorageConfig `toml:"storage"`
}

// UserPreferences is the per-user context passed into the router and voice
// controllers. It is read-only during a dispatch; edits take effect on the
// next one.
type UserPreferences struct {
	// PreferredProvider is the provider tried first on each dispatch.
	PreferredProvider string `toml:"preferred_provider"`
	// Language is a BCP 47 tag such as "ru" or "en-US".
	Language string `toml:"language"`
	// VoiceEnabled turns on automatic speech synthesis of assistant replies.
	VoiceEnabled bool `toml:"voice_enabled"`
	// Voice selects the synthesis voice when VoiceEnabled is true.
	Voice string `toml:"voice"`
	// MaxHistory is the number of prior messages sent with each request.
	MaxHistory int `toml:"max_history"`
}

// ProviderConfig describes one AI backend.
type ProviderConfig struct {
	ID          string `toml:"id"`
	DisplayName string `toml:"display_name"`
	Endpoint    string `toml:"endpoint"`
	// APIKey is the provider credential. Prefer setting it via the
	// ASSISTANT_<ID>_KEY environment variable over writing it to disk.
	APIKey  string `toml:"api_key"`
	Enabled bool   `toml:"enabled"`
	// Model optionally overrides the provider's default model identifier.
	Model string `toml:"model"`
}

// SpeechConfig configures the universal speech endpoint.
type SpeechConfig struct {
	// Endpoint is the URL handling both recognition and synthesis actions.
	Endpoint string `toml:"endpoint"`
	// Provider selects the speech backend: "yandex" or "sber".
	Provider string `toml:"provider"`
}

// AttachmentConfig configures file upload handling.
type AttachmentConfig struct {
	// MaxSizeBytes is the upload ceiling. Files at or above it are refused.
	MaxSizeBytes int64 `toml:"max_size_bytes"`
}

// StorageConfig configures message persistence.
type StorageConfig struct {
	// Path is the SQLite database file. Empty means ~/.assistant/messages.db.
	Path string `toml:"path"`
	// JournalPath receives rows that failed to reach the database. Empty
	// means ~/.assistant/messages.journal.
	JournalPath string `toml:"journal_path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultMaxHistory is the history window sent with each request when the
// user has not set one.
const DefaultMaxHistory = 10

// DefaultAttachmentLimit is the attachment size ceiling in bytes.
const DefaultAttachmentLimit = 5 * 1024 * 1024

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Preferences: UserPreferences{
			PreferredProvider: "yandex-gpt",
			Language:          "ru",
			VoiceEnabled:      false,
			Voice:             "alena",
			MaxHistory:        DefaultMaxHistory,
		},

		Providers: []ProviderConfig{
			{
				ID:          "yandex-gpt",
				DisplayName: "YandexGPT",
				Endpoint:    "https://llm.api.cloud.yandex.net/foundationModels/v1/completion",
				Enabled:     true,
			},
			{
				ID:          "gigachat",
				DisplayName: "GigaChat",
				Endpoint:    "https://gigachat.devices.sberbank.ru/api/v1/chat/completions",
				Enabled:     true,
			},
			{
				ID:          "openrouter",
				DisplayName: "OpenRouter",
				Endpoint:    "https://openrouter.ai/api/v1/chat/completions",
				Enabled:     true,
				Model:       "openrouter/auto",
			},
		},

		Speech: SpeechConfig{
			Provider: "yandex",
		},

		Attachments: AttachmentConfig{
			MaxSizeBytes: DefaultAttachmentLimit,
		},

		Storage: StorageConfig{},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the assistant configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".assistant"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files hold API keys, so anything wider than 0600 gets tightened.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return LoadFromPath(path)
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Preferences.PreferredProvider == "" {
		cfg.Preferences.PreferredProvider = defaults.Preferences.PreferredProvider
	}
	if cfg.Preferences.Language == "" {
		cfg.Preferences.Language = defaults.Preferences.Language
	}
	if cfg.Preferences.Voice == "" {
		cfg.Preferences.Voice = defaults.Preferences.Voice
	}
	if cfg.Preferences.MaxHistory == 0 {
		cfg.Preferences.MaxHistory = defaults.Preferences.MaxHistory
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = defaults.Providers
	}
	if cfg.Speech.Provider == "" {
		cfg.Speech.Provider = defaults.Speech.Provider
	}
	if cfg.Attachments.MaxSizeBytes == 0 {
		cfg.Attachments.MaxSizeBytes = defaults.Attachments.MaxSizeBytes
	}
}

// ApplyEnvOverrides applies environment variable overrides. Credentials in
// particular are expected to arrive this way rather than on disk.
//
// Recognized variables:
//   - ASSISTANT_PREFERRED_PROVIDER
//   - ASSISTANT_SPEECH_ENDPOINT
//   - ASSISTANT_<PROVIDER>_KEY, e.g. ASSISTANT_YANDEX_GPT_KEY
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ASSISTANT_PREFERRED_PROVIDER"); v != "" {
		c.Preferences.PreferredProvider = v
	}
	if v := os.Getenv("ASSISTANT_SPEECH_ENDPOINT"); v != "" {
		c.Speech.Endpoint = v
	}
	for i := range c.Providers {
		envName := "ASSISTANT_" + strings.ToUpper(strings.ReplaceAll(c.Providers[i].ID, "-", "_")) + "_KEY"
		if v := os.Getenv(envName); v != "" {
			c.Providers[i].APIKey = v
		}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file. The write is atomic and
// the file is created with 0600 permissions to protect API keys.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# assistant configuration file\n")
	buf.WriteString("# edit with care; credentials are better passed via environment\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors. Out-of-range
// numeric values are clamped rather than rejected.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := language.Parse(c.Preferences.Language); err != nil {
		errs = append(errs, ValidationError{
			Field:   "preferences.language",
			Message: fmt.Sprintf("invalid language tag %q", c.Preferences.Language),
		})
	}

	// Clamp the history window to a sane range.
	if c.Preferences.MaxHistory < 1 {
		c.Preferences.MaxHistory = DefaultMaxHistory
	}
	if c.Preferences.MaxHistory > 50 {
		c.Preferences.MaxHistory = 50
	}

	if c.Attachments.MaxSizeBytes < 0 {
		c.Attachments.MaxSizeBytes = DefaultAttachmentLimit
	}

	seen := make(map[string]bool)
	for i, p := range c.Providers {
		field := fmt.Sprintf("providers[%d]", i)
		if p.ID == "" {
			errs = append(errs, ValidationError{Field: field + ".id", Message: "must not be empty"})
			continue
		}
		if seen[p.ID] {
			errs = append(errs, ValidationError{Field: field + ".id", Message: fmt.Sprintf("duplicate provider id %q", p.ID)})
		}
		seen[p.ID] = true
		if p.Endpoint != "" {
			if u, err := url.Parse(p.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, ValidationError{Field: field + ".endpoint", Message: fmt.Sprintf("invalid URL %q", p.Endpoint)})
			}
		}
	}

	if c.Preferences.PreferredProvider != "" && !seen[c.Preferences.PreferredProvider] {
		errs = append(errs, ValidationError{
			Field:   "preferences.preferred_provider",
			Message: fmt.Sprintf("unknown provider %q", c.Preferences.PreferredProvider),
		})
	}

	switch c.Speech.Provider {
	case "", "yandex", "sber":
	default:
		errs = append(errs, ValidationError{
			Field:   "speech.provider",
			Message: fmt.Sprintf("must be \"yandex\" or \"sber\", got %q", c.Speech.Provider),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Provider returns the configuration for the given provider id.
func (c *Config) Provider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// StoragePath resolves the database path, defaulting under the config dir.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "messages.db"), nil
}

// JournalPath resolves the persistence journal path.
func (c *Config) JournalPath() (string, error) {
	if c.Storage.JournalPath != "" {
		return c.Storage.JournalPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "messages.journal"), nil
}
