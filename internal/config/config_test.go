package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gendonk/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_ORG_ID", "GENDONK_SYSTEM_PROMPT", "GENDONK_BASE_MODEL"} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadDefaultsExpandPathsAndUseEnv(t *testing.T) {
	home := isolateEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GENDONK_SYSTEM_PROMPT", "You write technical offers.")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantWork := filepath.Join(home, ".local", "share", "gendonk", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	wantCheckpoint := filepath.Join(home, ".local", "share", "gendonk", "checkpoint_model")
	if cfg.Paths.CheckpointFile != wantCheckpoint {
		t.Fatalf("unexpected checkpoint file: got %q want %q", cfg.Paths.CheckpointFile, wantCheckpoint)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected api key from env, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Prompt.SystemPrompt != "You write technical offers." {
		t.Fatalf("expected system prompt from env, got %q", cfg.Prompt.SystemPrompt)
	}
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("unexpected base url: %q", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.BaseModel != "gpt-4o-mini-2024-07-18" {
		t.Fatalf("unexpected base model: %q", cfg.OpenAI.BaseModel)
	}
	if got := cfg.PollInterval(); got != 10*time.Second {
		t.Fatalf("unexpected poll interval: %v", got)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Fatalf("RequireAPIKey: %v", err)
	}
	if err := cfg.RequireSystemPrompt(); err != nil {
		t.Fatalf("RequireSystemPrompt: %v", err)
	}
}

func TestLoadFileOverridesEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("GENDONK_BASE_MODEL", "gpt-4o-2024-08-06")

	path := filepath.Join(t.TempDir(), "gendonk.toml")
	content := `
[openai]
api_key = "from-file"
base_url = "http://localhost:9999/v1/"

[prompt]
system_prompt = "SYS"

[tracker]
poll_interval_seconds = 3

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file %q to be used, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.OpenAI.APIKey != "from-file" {
		t.Fatalf("expected file api key to win, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.BaseModel != "gpt-4o-2024-08-06" {
		t.Fatalf("expected env base model, got %q", cfg.OpenAI.BaseModel)
	}
	if cfg.PollInterval() != 3*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.PollInterval())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"logging.format":                "[logging]\nformat = \"xml\"\n",
		"tracker.poll_interval_seconds": "[tracker]\npoll_interval_seconds = -1\n",
		"openai.base_url":               "[openai]\nbase_url = \"ftp://example.com\"\n",
	}
	for key, content := range cases {
		t.Run(key, func(t *testing.T) {
			isolateEnv(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error to mention %s, got %v", key, err)
			}
		})
	}
}

func TestRequireHelpersReportMissingValues(t *testing.T) {
	isolateEnv(t)
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.RequireAPIKey(); err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected api key error, got %v", err)
	}
	if err := cfg.RequireSystemPrompt(); err == nil || !strings.Contains(err.Error(), "GENDONK_SYSTEM_PROMPT") {
		t.Fatalf("expected system prompt error, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Tracker.MaxPollFailures != 5 {
		t.Fatalf("unexpected max poll failures %d", cfg.Tracker.MaxPollFailures)
	}
}
