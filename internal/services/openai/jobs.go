package openai

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const listPageSize = 100

// CreateFineTuningJob starts a job training req.Model on req.TrainingFile.
func (c *Client) CreateFineTuningJob(ctx context.Context, req JobRequest) (Job, error) {
	var job Job
	if strings.TrimSpace(req.TrainingFile) == "" {
		return job, errors.New("create fine-tuning job: training file required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return job, errors.New("create fine-tuning job: model required")
	}
	err := c.do(ctx, request{
		op:     "create fine-tuning job",
		method: http.MethodPost,
		path:   "/fine_tuning/jobs",
		body:   jsonBody(req),
	}, &job)
	return job, err
}

// RetrieveFineTuningJob fetches the current state of a job.
func (c *Client) RetrieveFineTuningJob(ctx context.Context, id string) (Job, error) {
	var job Job
	if strings.TrimSpace(id) == "" {
		return job, errors.New("retrieve fine-tuning job: job id required")
	}
	err := c.do(ctx, request{
		op:         "retrieve fine-tuning job",
		method:     http.MethodGet,
		path:       "/fine_tuning/jobs/" + url.PathEscape(id),
		idempotent: true,
	}, &job)
	return job, err
}

// CancelFineTuningJob asks the service to stop a job.
func (c *Client) CancelFineTuningJob(ctx context.Context, id string) (Job, error) {
	var job Job
	if strings.TrimSpace(id) == "" {
		return job, errors.New("cancel fine-tuning job: job id required")
	}
	err := c.do(ctx, request{
		op:         "cancel fine-tuning job",
		method:     http.MethodPost,
		path:       "/fine_tuning/jobs/" + url.PathEscape(id) + "/cancel",
		idempotent: true,
	}, &job)
	return job, err
}

// ListFineTuningJobs returns every job visible to the API key, following
// pagination until the service reports no more pages.
func (c *Client) ListFineTuningJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	after := ""
	for {
		query := url.Values{"limit": {strconv.Itoa(listPageSize)}}
		if after != "" {
			query.Set("after", after)
		}
		var page listResponse[Job]
		if err := c.do(ctx, request{
			op:         "list fine-tuning jobs",
			method:     http.MethodGet,
			path:       "/fine_tuning/jobs",
			query:      query,
			idempotent: true,
		}, &page); err != nil {
			return nil, err
		}
		jobs = append(jobs, page.Data...)
		if !page.HasMore || len(page.Data) == 0 {
			return jobs, nil
		}
		after = page.Data[len(page.Data)-1].ID
	}
}

// ListFineTuningEvents returns the most recent events of a job, newest first.
func (c *Client) ListFineTuningEvents(ctx context.Context, id string, limit int) ([]Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("list fine-tuning events: job id required")
	}
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var page listResponse[Event]
	err := c.do(ctx, request{
		op:         "list fine-tuning events",
		method:     http.MethodGet,
		path:       "/fine_tuning/jobs/" + url.PathEscape(id) + "/events",
		query:      query,
		idempotent: true,
	}, &page)
	return page.Data, err
}
