package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	t.Setenv("GENDONK_DOTENV_NEW", "placeholder")
	if err := os.Unsetenv("GENDONK_DOTENV_NEW"); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GENDONK_DOTENV_SET", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := "GENDONK_DOTENV_NEW=from-file\nGENDONK_DOTENV_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("GENDONK_DOTENV_NEW"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("GENDONK_DOTENV_SET"); got != "from-env" {
		t.Fatalf("expected existing value to win, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
