package client

import (
	"context"
	"encoding/json"

	"github.com/fivetwenty-io/schematics-client/internal/operation"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

const inventoryIDParam = "inventory_id"

// InventoriesClient implements schematics.InventoriesClient.
type InventoriesClient struct {
	client *Client
}

// NewInventoriesClient creates a new inventories client.
func NewInventoriesClient(client *Client) *InventoriesClient {
	return &InventoriesClient{client: client}
}

// List implements schematics.InventoriesClient.List.
func (i *InventoriesClient) List(ctx context.Context, params *schematics.ListParams) (*schematics.Result[schematics.ListResponse[schematics.Inventory]], error) {
	return list[schematics.Inventory](ctx, i.client, operation.ListInventories, params)
}

// ListCursor implements schematics.InventoriesClient.ListCursor.
func (i *InventoriesClient) ListCursor(params *schematics.ListParams) *schematics.Cursor[schematics.Inventory] {
	return cursor[schematics.Inventory](i.client, operation.ListInventories, params)
}

// Get implements schematics.InventoriesClient.Get.
func (i *InventoriesClient) Get(ctx context.Context, id string) (*schematics.Result[schematics.Inventory], error) {
	return call[schematics.Inventory](ctx, i.client, operation.GetInventory, byID(inventoryIDParam, id))
}

// Create implements schematics.InventoriesClient.Create.
func (i *InventoriesClient) Create(ctx context.Context, request *schematics.InventoryRequest) (*schematics.Result[schematics.Inventory], error) {
	return call[schematics.Inventory](ctx, i.client, operation.CreateInventory, withBody("", "", request))
}

// Update implements schematics.InventoriesClient.Update.
func (i *InventoriesClient) Update(ctx context.Context, id string, request *schematics.InventoryRequest) (*schematics.Result[schematics.Inventory], error) {
	return call[schematics.Inventory](ctx, i.client, operation.UpdateInventory, withBody(inventoryIDParam, id, request))
}

// Delete implements schematics.InventoriesClient.Delete.
func (i *InventoriesClient) Delete(ctx context.Context, id string) (*schematics.Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, i.client, operation.DeleteInventory, byID(inventoryIDParam, id))
}
