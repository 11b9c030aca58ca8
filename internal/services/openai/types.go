package openai

// JobStatus is the lifecycle state reported for a fine-tuning job.
type JobStatus string

const (
	StatusValidatingFiles JobStatus = "validating_files"
	StatusQueued          JobStatus = "queued"
	StatusRunning         JobStatus = "running"
	StatusSucceeded       JobStatus = "succeeded"
	StatusFailed          JobStatus = "failed"
	StatusCancelled       JobStatus = "cancelled"
)

// Terminal reports whether the service will never change the status again.
// Unknown statuses are treated as non-terminal.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// File is an uploaded artifact.
type File struct {
	ID        string `json:"id"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	Status    string `json:"status"`
}

// JobError describes why a job failed.
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

// Job is a fine-tuning job as reported by the service.
type Job struct {
	ID             string    `json:"id"`
	Model          string    `json:"model"`
	Status         JobStatus `json:"status"`
	FineTunedModel string    `json:"fine_tuned_model"`
	CreatedAt      int64     `json:"created_at"`
	FinishedAt     int64     `json:"finished_at"`
	TrainingFile   string    `json:"training_file"`
	TrainedTokens  int64     `json:"trained_tokens"`
	Error          *JobError `json:"error"`
}

// ErrorMessage returns the failure message carried by the job, if any.
func (j Job) ErrorMessage() string {
	if j.Error == nil {
		return ""
	}
	return j.Error.Message
}

// JobRequest creates a fine-tuning job.
type JobRequest struct {
	TrainingFile string `json:"training_file"`
	Model        string `json:"model"`
	Suffix       string `json:"suffix,omitempty"`
}

// Event is a progress message emitted by a running job.
type Event struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Type      string `json:"type"`
}

// Message roles shared by chat requests and training records.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn. Training records use the same shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type listResponse[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}
