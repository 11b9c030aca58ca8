package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gendonk/internal/fileutil"
)

// Store is the single-slot checkpoint file. Each Save overwrites the
// previous model; no history is kept.
type Store struct {
	Path string
}

func (s Store) lockPath() string {
	return s.Path + ".lock"
}

// Load returns the stored model. A missing or blank file is not an error.
func (s Store) Load() (string, bool, error) {
	if strings.TrimSpace(s.Path) == "" {
		return "", false, errors.New("checkpoint store: path required")
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read checkpoint: %w", err)
	}
	model := strings.TrimSpace(string(data))
	return model, model != "", nil
}

// Save replaces the slot with model.
func (s Store) Save(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("checkpoint store: model required")
	}
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("checkpoint store: path required")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	unlock, err := fileutil.Lock(s.lockPath())
	if err != nil {
		return err
	}
	defer unlock()

	if err := fileutil.WriteFileAtomic(s.Path, []byte(model+"\n"), 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Clear empties the slot.
func (s Store) Clear() error {
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("checkpoint store: path required")
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}
