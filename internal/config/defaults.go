package config

const (
	defaultWorkDir             = "~/.local/share/gendonk/work"
	defaultCheckpointFile      = "~/.local/share/gendonk/checkpoint_model"
	defaultLogDir              = "~/.local/share/gendonk/logs"
	defaultOpenAIBaseURL       = "https://api.openai.com/v1"
	defaultBaseModel           = "gpt-4o-mini-2024-07-18"
	defaultOpenAITimeout       = 60
	defaultPollIntervalSeconds = 10
	defaultMaxPollFailures     = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:        defaultWorkDir,
			CheckpointFile: defaultCheckpointFile,
			LogDir:         defaultLogDir,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			BaseModel:      defaultBaseModel,
			TimeoutSeconds: defaultOpenAITimeout,
		},
		Tracker: Tracker{
			PollIntervalSeconds: defaultPollIntervalSeconds,
			MaxPollFailures:     defaultMaxPollFailures,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
