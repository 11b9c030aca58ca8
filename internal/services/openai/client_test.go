package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{WithSleeper(func(time.Duration) {})}, opts...)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL + "/"}, opts...)
}

func TestClientRetrieveJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/fine_tuning/jobs/ftjob-1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":               "ftjob-1",
			"status":           "succeeded",
			"fine_tuned_model": "ft:gpt-4o:acme::m1",
			"created_at":       1700000000,
		})
	})

	job, err := client.RetrieveFineTuningJob(context.Background(), "ftjob-1")
	if err != nil {
		t.Fatalf("RetrieveFineTuningJob returned error: %v", err)
	}
	if job.Status != StatusSucceeded || job.FineTunedModel != "ft:gpt-4o:acme::m1" {
		t.Fatalf("unexpected job %+v", job)
	}
	if !job.Status.Terminal() {
		t.Fatal("expected succeeded to be terminal")
	}
}

func TestClientCreateJobSendsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/fine_tuning/jobs" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req JobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.TrainingFile != "file-1" || req.Model != "gpt-4o-mini-2024-07-18" {
			t.Fatalf("unexpected request body %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "ftjob-9", "status": "validating_files"})
	})

	job, err := client.CreateFineTuningJob(context.Background(), JobRequest{TrainingFile: "file-1", Model: "gpt-4o-mini-2024-07-18"})
	if err != nil {
		t.Fatalf("CreateFineTuningJob returned error: %v", err)
	}
	if job.ID != "ftjob-9" || job.Status.Terminal() {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestClientUploadFileMultipart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.jsonl")
	if err := os.WriteFile(path, []byte("{\"messages\":[]}\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("purpose"); got != PurposeFineTune {
			t.Fatalf("unexpected purpose %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "train.jsonl" || !strings.Contains(string(content), "messages") {
			t.Fatalf("unexpected upload %s %q", header.Filename, content)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "file-abc", "purpose": PurposeFineTune})
	})

	file, err := client.UploadFile(context.Background(), path, PurposeFineTune)
	if err != nil {
		t.Fatalf("UploadFile returned error: %v", err)
	}
	if file.ID != "file-abc" {
		t.Fatalf("unexpected file %+v", file)
	}
}

func TestClientListJobsFollowsPagination(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("after") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data":     []any{map[string]any{"id": "ftjob-3"}, map[string]any{"id": "ftjob-2"}},
				"has_more": true,
			})
		case "ftjob-2":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data":     []any{map[string]any{"id": "ftjob-1"}},
				"has_more": false,
			})
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("after"))
		}
	})

	jobs, err := client.ListFineTuningJobs(context.Background())
	if err != nil {
		t.Fatalf("ListFineTuningJobs returned error: %v", err)
	}
	if len(jobs) != 3 || jobs[2].ID != "ftjob-1" {
		t.Fatalf("unexpected jobs %+v", jobs)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 page requests, got %d", calls.Load())
	}
}

func TestClientChatCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Model != "ft:m3" || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "Hello there"}}},
		})
	})

	out, err := client.ChatCompletion(context.Background(), "ft:m3", []Message{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("ChatCompletion returned error: %v", err)
	}
	if out != "Hello there" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestClientAPIErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})

	_, err := client.RetrieveFineTuningJob(context.Background(), "ftjob-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Incorrect API key provided" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestClientRetriesIdempotentServerErrors(t *testing.T) {
	var calls atomic.Int32
	var slept []time.Duration
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "ftjob-1", "status": "running"})
	},
		WithRetryBackoff(100*time.Millisecond, time.Second),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)

	job, err := client.RetrieveFineTuningJob(context.Background(), "ftjob-1")
	if err != nil {
		t.Fatalf("RetrieveFineTuningJob returned error: %v", err)
	}
	if job.Status != StatusRunning {
		t.Fatalf("unexpected status %q", job.Status)
	}
	if len(slept) != 2 || slept[0] != 100*time.Millisecond || slept[1] != 200*time.Millisecond {
		t.Fatalf("unexpected backoff %v", slept)
	}
}

func TestClientDoesNotRetryCreateOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateFineTuningJob(context.Background(), JobRequest{TrainingFile: "file-1", Model: "m"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClientHonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	var slept []time.Duration
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "ftjob-1", "status": "queued"})
	}, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	if _, err := client.CreateFineTuningJob(context.Background(), JobRequest{TrainingFile: "file-1", Model: "m"}); err != nil {
		t.Fatalf("CreateFineTuningJob returned error: %v", err)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Fatalf("unexpected sleeps %v", slept)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.ListFineTuningJobs(context.Background()); err == nil || !strings.Contains(err.Error(), "api key required") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{"", 0, false},
		{"5", 5 * time.Second, true},
		{"-1", 0, false},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseRetryAfter(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("parseRetryAfter(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPermanent(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&APIError{StatusCode: http.StatusUnauthorized}, true},
		{fmt.Errorf("retrieve: %w", &APIError{StatusCode: http.StatusNotFound}), true},
		{&APIError{StatusCode: http.StatusTooManyRequests}, false},
		{&APIError{StatusCode: http.StatusBadGateway}, false},
		{errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		if got := Permanent(tt.err); got != tt.want {
			t.Fatalf("Permanent(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "ftjob-1", "status": "running"})
	}, WithRateLimit(0.01))

	if _, err := client.RetrieveFineTuningJob(context.Background(), "ftjob-1"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.RetrieveFineTuningJob(ctx, "ftjob-1"); err == nil {
		t.Fatal("expected rate limiter to reject the second request")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 request to reach the server, got %d", calls.Load())
	}
}
