// Package chat sends single-turn prompts to a fine-tuned model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gendonk/internal/logging"
	"gendonk/internal/records"
	"gendonk/internal/services/openai"
)

// ErrEmptyInput is returned for blank user input.
var ErrEmptyInput = errors.New("input is empty")

// Completer produces a chat completion.
type Completer interface {
	ChatCompletion(ctx context.Context, model string, messages []openai.Message) (string, error)
}

// Session pairs a model with the system prompt it was trained under.
type Session struct {
	Model        string
	SystemPrompt string
	Completer    Completer
	Logger       *slog.Logger
}

// Generate answers input. Each call is independent; no history is sent.
func (s Session) Generate(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if strings.TrimSpace(s.Model) == "" {
		return "", errors.New("chat: model required")
	}
	if strings.TrimSpace(s.SystemPrompt) == "" {
		return "", records.ErrSystemPromptRequired
	}
	if s.Completer == nil {
		return "", errors.New("chat: completer required")
	}

	logger := logging.NewComponentLogger(s.Logger, "chat")
	logger.Debug("sending chat completion",
		slog.String(logging.FieldModel, s.Model),
		slog.Int("input_chars", len(input)),
	)
	out, err := s.Completer.ChatCompletion(ctx, s.Model, []openai.Message{
		{Role: openai.RoleSystem, Content: s.SystemPrompt},
		{Role: openai.RoleUser, Content: input},
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}
