// Package openai provides the HTTP client for the external fine-tuning
// service.
//
// # Operations
//
// The client covers exactly what gendonk consumes: file upload for training
// artifacts, fine-tuning job create/retrieve/list/cancel, job events for
// progress messages, and chat completions against a fine-tuned model.
//
// # Configuration
//
// Requires api_key; base_url defaults to https://api.openai.com/v1 and any
// OpenAI-compatible endpoint can be substituted. organization and timeout
// are optional.
//
// # Retry Behaviour
//
// Idempotent requests (GET, cancel) retry on HTTP 408/429/5xx and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Requests that create server-side state (upload, job creation,
// chat) retry only on 429, where the service guarantees nothing was
// processed. Retry-After is honoured. Context cancellation aborts retries
// immediately.
package openai
