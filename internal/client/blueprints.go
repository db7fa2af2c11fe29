package client

import (
	"context"
	"encoding/json"

	"github.com/fivetwenty-io/schematics-client/internal/operation"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

const blueprintIDParam = "blueprint_id"

// BlueprintsClient implements schematics.BlueprintsClient.
type BlueprintsClient struct {
	client *Client
}

// NewBlueprintsClient creates a new blueprints client.
func NewBlueprintsClient(client *Client) *BlueprintsClient {
	return &BlueprintsClient{client: client}
}

// List implements schematics.BlueprintsClient.List.
func (b *BlueprintsClient) List(ctx context.Context, params *schematics.ListParams) (*schematics.Result[schematics.ListResponse[schematics.Blueprint]], error) {
	return list[schematics.Blueprint](ctx, b.client, operation.ListBlueprints, params)
}

// ListCursor implements schematics.BlueprintsClient.ListCursor.
func (b *BlueprintsClient) ListCursor(params *schematics.ListParams) *schematics.Cursor[schematics.Blueprint] {
	return cursor[schematics.Blueprint](b.client, operation.ListBlueprints, params)
}

// Get implements schematics.BlueprintsClient.Get.
func (b *BlueprintsClient) Get(ctx context.Context, id string) (*schematics.Result[schematics.Blueprint], error) {
	return call[schematics.Blueprint](ctx, b.client, operation.GetBlueprint, byID(blueprintIDParam, id))
}

// Create implements schematics.BlueprintsClient.Create.
func (b *BlueprintsClient) Create(ctx context.Context, request *schematics.BlueprintRequest) (*schematics.Result[schematics.Blueprint], error) {
	return call[schematics.Blueprint](ctx, b.client, operation.CreateBlueprint, withBody("", "", request))
}

// Update implements schematics.BlueprintsClient.Update.
func (b *BlueprintsClient) Update(ctx context.Context, id string, request *schematics.BlueprintRequest) (*schematics.Result[schematics.Blueprint], error) {
	return call[schematics.Blueprint](ctx, b.client, operation.UpdateBlueprint, withBody(blueprintIDParam, id, request))
}

// Delete implements schematics.BlueprintsClient.Delete.
func (b *BlueprintsClient) Delete(ctx context.Context, id string) (*schematics.Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, b.client, operation.DeleteBlueprint, byID(blueprintIDParam, id))
}

// Install implements schematics.BlueprintsClient.Install. The returned job
// tracks the installation.
func (b *BlueprintsClient) Install(ctx context.Context, id string) (*schematics.Result[schematics.Job], error) {
	return call[schematics.Job](ctx, b.client, operation.InstallBlueprint, byID(blueprintIDParam, id))
}
