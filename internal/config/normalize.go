package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const dotEnvFile = ".env"

// environment lists the variables consulted when the TOML file leaves a value empty.
type environment struct {
	APIKey       string `envconfig:"OPENAI_API_KEY"`
	BaseURL      string `envconfig:"OPENAI_BASE_URL"`
	Organization string `envconfig:"OPENAI_ORG_ID"`
	SystemPrompt string `envconfig:"GENDONK_SYSTEM_PROMPT"`
	BaseModel    string `envconfig:"GENDONK_BASE_MODEL"`
}

// loadDotEnv populates the process environment from path without overriding
// variables that are already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFromEnv(); err != nil {
		return err
	}
	c.normalizeOpenAI()
	c.normalizeTracker()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CheckpointFile) == "" {
		c.Paths.CheckpointFile = defaultCheckpointFile
	}
	if c.Paths.CheckpointFile, err = expandPath(strings.TrimSpace(c.Paths.CheckpointFile)); err != nil {
		return fmt.Errorf("paths.checkpoint_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFromEnv() error {
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		c.OpenAI.APIKey = env.APIKey
	}
	if strings.TrimSpace(c.OpenAI.BaseURL) == "" || (c.OpenAI.BaseURL == defaultOpenAIBaseURL && env.BaseURL != "") {
		c.OpenAI.BaseURL = env.BaseURL
	}
	if strings.TrimSpace(c.OpenAI.Organization) == "" {
		c.OpenAI.Organization = env.Organization
	}
	if strings.TrimSpace(c.Prompt.SystemPrompt) == "" {
		c.Prompt.SystemPrompt = env.SystemPrompt
	}
	if env.BaseModel != "" && (strings.TrimSpace(c.OpenAI.BaseModel) == "" || c.OpenAI.BaseModel == defaultBaseModel) {
		c.OpenAI.BaseModel = env.BaseModel
	}
	return nil
}

func (c *Config) normalizeOpenAI() {
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	c.OpenAI.Organization = strings.TrimSpace(c.OpenAI.Organization)
	c.OpenAI.BaseModel = strings.TrimSpace(c.OpenAI.BaseModel)
	if c.OpenAI.BaseModel == "" {
		c.OpenAI.BaseModel = defaultBaseModel
	}
	c.OpenAI.ChatModel = strings.TrimSpace(c.OpenAI.ChatModel)
	c.OpenAI.Suffix = strings.TrimSpace(c.OpenAI.Suffix)
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaultOpenAITimeout
	}
}

func (c *Config) normalizeTracker() {
	if c.Tracker.PollIntervalSeconds == 0 {
		c.Tracker.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Tracker.MaxPollFailures == 0 {
		c.Tracker.MaxPollFailures = defaultMaxPollFailures
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
