package client

import (
	"context"
	"encoding/json"

	"github.com/fivetwenty-io/schematics-client/internal/operation"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

const agentIDParam = "agent_id"

// AgentsClient implements schematics.AgentsClient.
type AgentsClient struct {
	client *Client
}

// NewAgentsClient creates a new agents client.
func NewAgentsClient(client *Client) *AgentsClient {
	return &AgentsClient{client: client}
}

// List implements schematics.AgentsClient.List.
func (a *AgentsClient) List(ctx context.Context, params *schematics.ListParams) (*schematics.Result[schematics.ListResponse[schematics.Agent]], error) {
	return list[schematics.Agent](ctx, a.client, operation.ListAgents, params)
}

// ListCursor implements schematics.AgentsClient.ListCursor.
func (a *AgentsClient) ListCursor(params *schematics.ListParams) *schematics.Cursor[schematics.Agent] {
	return cursor[schematics.Agent](a.client, operation.ListAgents, params)
}

// Get implements schematics.AgentsClient.Get.
func (a *AgentsClient) Get(ctx context.Context, id string) (*schematics.Result[schematics.Agent], error) {
	return call[schematics.Agent](ctx, a.client, operation.GetAgent, byID(agentIDParam, id))
}

// Create implements schematics.AgentsClient.Create.
func (a *AgentsClient) Create(ctx context.Context, request *schematics.AgentRequest) (*schematics.Result[schematics.Agent], error) {
	return call[schematics.Agent](ctx, a.client, operation.CreateAgent, withBody("", "", request))
}

// Update implements schematics.AgentsClient.Update.
func (a *AgentsClient) Update(ctx context.Context, id string, request *schematics.AgentRequest) (*schematics.Result[schematics.Agent], error) {
	return call[schematics.Agent](ctx, a.client, operation.UpdateAgent, withBody(agentIDParam, id, request))
}

// Delete implements schematics.AgentsClient.Delete.
func (a *AgentsClient) Delete(ctx context.Context, id string) (*schematics.Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, a.client, operation.DeleteAgent, byID(agentIDParam, id))
}

// Deploy implements schematics.AgentsClient.Deploy.
func (a *AgentsClient) Deploy(ctx context.Context, id string) (*schematics.Result[schematics.AgentDeployment], error) {
	return call[schematics.AgentDeployment](ctx, a.client, operation.DeployAgent, byID(agentIDParam, id))
}
