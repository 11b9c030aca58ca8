package chat

import (
	"context"
	"errors"
	"testing"

	"gendonk/internal/records"
	"gendonk/internal/services/openai"
)

type recordingCompleter struct {
	model    string
	messages []openai.Message
	reply    string
	err      error
}

func (r *recordingCompleter) ChatCompletion(_ context.Context, model string, messages []openai.Message) (string, error) {
	r.model = model
	r.messages = messages
	return r.reply, r.err
}

func TestGenerateSendsSystemAndUser(t *testing.T) {
	completer := &recordingCompleter{reply: "Our hours are 9 to 5."}
	session := Session{Model: "ft:m3", SystemPrompt: "You answer store FAQs.", Completer: completer}

	out, err := session.Generate(context.Background(), "When are you open?")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out != "Our hours are 9 to 5." {
		t.Fatalf("unexpected output %q", out)
	}
	if completer.model != "ft:m3" {
		t.Fatalf("unexpected model %q", completer.model)
	}
	want := []openai.Message{
		{Role: openai.RoleSystem, Content: "You answer store FAQs."},
		{Role: openai.RoleUser, Content: "When are you open?"},
	}
	if len(completer.messages) != len(want) {
		t.Fatalf("unexpected messages %+v", completer.messages)
	}
	for i := range want {
		if completer.messages[i] != want[i] {
			t.Fatalf("message %d = %+v, want %+v", i, completer.messages[i], want[i])
		}
	}
}

func TestGenerateRejectsBlankInput(t *testing.T) {
	completer := &recordingCompleter{}
	session := Session{Model: "ft:m3", SystemPrompt: "SYS", Completer: completer}
	if _, err := session.Generate(context.Background(), "  \n"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if completer.model != "" {
		t.Fatal("completer called for blank input")
	}
}

func TestGenerateRequiresSystemPrompt(t *testing.T) {
	session := Session{Model: "ft:m3", Completer: &recordingCompleter{}}
	if _, err := session.Generate(context.Background(), "hi"); !errors.Is(err, records.ErrSystemPromptRequired) {
		t.Fatalf("expected ErrSystemPromptRequired, got %v", err)
	}
}

func TestGenerateWrapsCompleterError(t *testing.T) {
	boom := errors.New("model not found")
	session := Session{Model: "ft:gone", SystemPrompt: "SYS", Completer: &recordingCompleter{err: boom}}
	if _, err := session.Generate(context.Background(), "hi"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
