package client

import (
	"context"
	"encoding/json"

	"github.com/fivetwenty-io/schematics-client/internal/operation"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

const jobIDParam = "job_id"

// JobsClient implements schematics.JobsClient.
type JobsClient struct {
	client *Client
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(client *Client) *JobsClient {
	return &JobsClient{client: client}
}

// List implements schematics.JobsClient.List.
func (j *JobsClient) List(ctx context.Context, params *schematics.ListParams) (*schematics.Result[schematics.ListResponse[schematics.Job]], error) {
	return list[schematics.Job](ctx, j.client, operation.ListJobs, params)
}

// ListCursor implements schematics.JobsClient.ListCursor.
func (j *JobsClient) ListCursor(params *schematics.ListParams) *schematics.Cursor[schematics.Job] {
	return cursor[schematics.Job](j.client, operation.ListJobs, params)
}

// Get implements schematics.JobsClient.Get.
func (j *JobsClient) Get(ctx context.Context, id string) (*schematics.Result[schematics.Job], error) {
	return call[schematics.Job](ctx, j.client, operation.GetJob, byID(jobIDParam, id))
}

// Create implements schematics.JobsClient.Create. Creating a job is never
// repeated after the request was sent.
func (j *JobsClient) Create(ctx context.Context, request *schematics.JobCreateRequest) (*schematics.Result[schematics.Job], error) {
	return call[schematics.Job](ctx, j.client, operation.CreateJob, withBody("", "", request))
}

// Delete implements schematics.JobsClient.Delete.
func (j *JobsClient) Delete(ctx context.Context, id string) (*schematics.Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, j.client, operation.DeleteJob, byID(jobIDParam, id))
}

// ListLogs implements schematics.JobsClient.ListLogs.
func (j *JobsClient) ListLogs(ctx context.Context, id string) (*schematics.Result[schematics.JobLogs], error) {
	return call[schematics.JobLogs](ctx, j.client, operation.ListJobLogs, byID(jobIDParam, id))
}
