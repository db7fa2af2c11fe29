package client

import (
	"context"
	"encoding/json"

	"github.com/fivetwenty-io/schematics-client/internal/operation"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

const workspaceIDParam = "w_id"

// WorkspacesClient implements schematics.WorkspacesClient.
type WorkspacesClient struct {
	client *Client
}

// NewWorkspacesClient creates a new workspaces client.
func NewWorkspacesClient(client *Client) *WorkspacesClient {
	return &WorkspacesClient{client: client}
}

// List implements schematics.WorkspacesClient.List.
func (w *WorkspacesClient) List(ctx context.Context, params *schematics.ListParams) (*schematics.Result[schematics.ListResponse[schematics.Workspace]], error) {
	return list[schematics.Workspace](ctx, w.client, operation.ListWorkspaces, params)
}

// ListCursor implements schematics.WorkspacesClient.ListCursor.
func (w *WorkspacesClient) ListCursor(params *schematics.ListParams) *schematics.Cursor[schematics.Workspace] {
	return cursor[schematics.Workspace](w.client, operation.ListWorkspaces, params)
}

// Get implements schematics.WorkspacesClient.Get.
func (w *WorkspacesClient) Get(ctx context.Context, id string) (*schematics.Result[schematics.Workspace], error) {
	return call[schematics.Workspace](ctx, w.client, operation.GetWorkspace, byID(workspaceIDParam, id))
}

// Create implements schematics.WorkspacesClient.Create.
func (w *WorkspacesClient) Create(ctx context.Context, request *schematics.WorkspaceCreateRequest) (*schematics.Result[schematics.Workspace], error) {
	return call[schematics.Workspace](ctx, w.client, operation.CreateWorkspace, withBody("", "", request))
}

// Update implements schematics.WorkspacesClient.Update.
func (w *WorkspacesClient) Update(ctx context.Context, id string, request *schematics.WorkspaceUpdateRequest) (*schematics.Result[schematics.Workspace], error) {
	return call[schematics.Workspace](ctx, w.client, operation.UpdateWorkspace, withBody(workspaceIDParam, id, request))
}

// Delete implements schematics.WorkspacesClient.Delete.
func (w *WorkspacesClient) Delete(ctx context.Context, id string) (*schematics.Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, w.client, operation.DeleteWorkspace, byID(workspaceIDParam, id))
}

// UploadTemplate implements schematics.WorkspacesClient.UploadTemplate. The
// archive is sent as a multipart file part.
func (w *WorkspacesClient) UploadTemplate(ctx context.Context, id, templateID string, archive schematics.File) (*schematics.Result[schematics.TemplateUpload], error) {
	params := &schematics.Params{
		Path:  pathParams(workspaceIDParam, id, "t_id", templateID),
		Files: []schematics.File{archive},
	}

	return call[schematics.TemplateUpload](ctx, w.client, operation.UploadTemplate, params)
}

// GetOutputs implements schematics.WorkspacesClient.GetOutputs.
func (w *WorkspacesClient) GetOutputs(ctx context.Context, id string) (*schematics.Result[[]schematics.WorkspaceOutput], error) {
	return call[[]schematics.WorkspaceOutput](ctx, w.client, operation.GetWorkspaceOutputs, byID(workspaceIDParam, id))
}
