package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ChatCompletion sends messages to model and returns the generated text.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []Message) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", errors.New("chat completion: model required")
	}
	if len(messages) == 0 {
		return "", errors.New("chat completion: messages required")
	}
	var resp chatCompletionResponse
	if err := c.do(ctx, request{
		op:     "chat completion",
		method: http.MethodPost,
		path:   "/chat/completions",
		body:   jsonBody(chatCompletionRequest{Model: model, Messages: messages}),
	}, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}
	choice := resp.Choices[0]
	if content := choice.Message.Content; strings.TrimSpace(content) != "" {
		return content, nil
	}
	return "", fmt.Errorf("chat completion: empty content (finish_reason=%q, refusal=%q)", choice.FinishReason, choice.Message.Refusal)
}
