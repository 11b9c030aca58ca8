package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gendonk/internal/checkpoint"
	"gendonk/internal/config"
	"gendonk/internal/finetune"
	"gendonk/internal/logging"
	"gendonk/internal/records"
	"gendonk/internal/services/openai"
	"gendonk/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openAIClient() (*openai.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Organization:   cfg.OpenAI.Organization,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	}, openai.WithRateLimit(cfg.OpenAI.RequestsPerSecond)), nil
}

func (c *commandContext) checkpointStore() checkpoint.Store {
	cfg, _ := c.ensureConfig()
	return checkpoint.Store{Path: cfg.Paths.CheckpointFile}
}

func (c *commandContext) converter() (records.Converter, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return records.Converter{}, err
	}
	if err := cfg.RequireSystemPrompt(); err != nil {
		return records.Converter{}, err
	}
	return records.Converter{SystemPrompt: cfg.Prompt.SystemPrompt}, nil
}

func (c *commandContext) tracker(progress func(finetune.Update)) (*finetune.Tracker, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := c.openAIClient()
	if err != nil {
		return nil, err
	}
	tracker, err := finetune.New(client, finetune.Options{
		BaseModel:       cfg.OpenAI.BaseModel,
		Suffix:          cfg.OpenAI.Suffix,
		PollInterval:    cfg.PollInterval(),
		MaxPollFailures: cfg.Tracker.MaxPollFailures,
		Checkpoints:     c.checkpointStore(),
		Progress:        progress,
		Logger:          c.ensureLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}
	return tracker, nil
}

func (c *commandContext) pipeline(jobs workflow.JobRunner) (*workflow.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	conv, err := c.converter()
	if err != nil {
		return nil, err
	}
	return &workflow.Pipeline{
		WorkDir:   cfg.Paths.WorkDir,
		Converter: conv,
		Jobs:      jobs,
		Logger:    c.ensureLogger(),
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
