package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	WorkDir        string `toml:"work_dir"`
	CheckpointFile string `toml:"checkpoint_file"`
	LogDir         string `toml:"log_dir"`
}

// OpenAI contains connection settings for the fine-tuning service.
type OpenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Organization   string `toml:"organization"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// RequestsPerSecond throttles API calls; zero means unlimited.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BaseModel         string  `toml:"base_model"`
	// ChatModel pins the chat tab to a specific model and skips checkpoint resolution.
	ChatModel string `toml:"chat_model"`
	Suffix    string `toml:"suffix"`
}

// Prompt holds the system prompt injected into every training record and chat call.
type Prompt struct {
	SystemPrompt string `toml:"system_prompt"`
}

// Tracker contains fine-tuning job polling settings.
type Tracker struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	MaxPollFailures     int `toml:"max_poll_failures"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gendonk.
type Config struct {
	Paths   Paths   `toml:"paths"`
	OpenAI  OpenAI  `toml:"openai"`
	Prompt  Prompt  `toml:"prompt"`
	Tracker Tracker `toml:"tracker"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gendonk/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gendonk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work and log directories plus the checkpoint file's parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir, filepath.Dir(c.Paths.CheckpointFile)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PollInterval returns the tracker polling interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tracker.PollIntervalSeconds) * time.Second
}

// RequireAPIKey reports a descriptive error when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OpenAI.APIKey) != "" {
		return nil
	}
	return fmt.Errorf("openai.api_key is required. Set OPENAI_API_KEY or edit %s (create with 'gendonk config init')", displayConfigPath())
}

// RequireSystemPrompt reports a descriptive error when no system prompt is configured.
func (c *Config) RequireSystemPrompt() error {
	if strings.TrimSpace(c.Prompt.SystemPrompt) != "" {
		return nil
	}
	return fmt.Errorf("prompt.system_prompt is required. Set GENDONK_SYSTEM_PROMPT or edit %s", displayConfigPath())
}

func displayConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return "~/.config/gendonk/config.toml"
	}
	return path
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
