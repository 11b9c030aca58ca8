package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Credentials and the system
// prompt are checked by the commands that need them (see RequireAPIKey and
// RequireSystemPrompt) so offline commands like convert work without a key.
func (c *Config) Validate() error {
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	parsed, err := url.Parse(c.OpenAI.BaseURL)
	if err != nil {
		return fmt.Errorf("openai.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("openai.base_url must be an http(s) URL, got %q", c.OpenAI.BaseURL)
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		return errors.New("openai.timeout_seconds must be positive")
	}
	if c.OpenAI.RequestsPerSecond < 0 {
		return errors.New("openai.requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) validateTracker() error {
	if c.Tracker.PollIntervalSeconds <= 0 {
		return errors.New("tracker.poll_interval_seconds must be positive")
	}
	if c.Tracker.MaxPollFailures <= 0 {
		return errors.New("tracker.max_poll_failures must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
