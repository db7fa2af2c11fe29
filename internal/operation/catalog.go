package operation

import (
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

// Operation names of the built-in catalog.
const (
	ListWorkspaces      = "list_workspaces"
	GetWorkspace        = "get_workspace"
	CreateWorkspace     = "create_workspace"
	UpdateWorkspace     = "update_workspace"
	DeleteWorkspace     = "delete_workspace"
	UploadTemplate      = "template_repo_upload"
	GetWorkspaceOutputs = "get_workspace_outputs"

	ListJobs    = "list_jobs"
	GetJob      = "get_job"
	CreateJob   = "create_job"
	DeleteJob   = "delete_job"
	ListJobLogs = "list_job_logs"

	ListAgents  = "list_agents"
	GetAgent    = "get_agent"
	CreateAgent = "create_agent"
	UpdateAgent = "update_agent"
	DeleteAgent = "delete_agent"
	DeployAgent = "deploy_agent"

	ListInventories = "list_inventories"
	GetInventory    = "get_inventory"
	CreateInventory = "create_inventory"
	UpdateInventory = "update_inventory"
	DeleteInventory = "delete_inventory"

	ListBlueprints   = "list_blueprints"
	GetBlueprint     = "get_blueprint"
	CreateBlueprint  = "create_blueprint"
	UpdateBlueprint  = "update_blueprint"
	DeleteBlueprint  = "delete_blueprint"
	InstallBlueprint = "install_blueprint"
)

// Catalog maps operation names to operations. It is safe for concurrent use.
type Catalog struct {
	mutex      sync.RWMutex
	operations map[string]*Operation
}

// NewCatalog creates a catalog holding the given operations. Later entries
// replace earlier ones with the same name.
func NewCatalog(operations ...*Operation) *Catalog {
	catalog := &Catalog{operations: make(map[string]*Operation, len(operations))}
	for _, op := range operations {
		catalog.operations[op.Name] = op
	}

	return catalog
}

// Add registers an operation. Names must be unique.
func (c *Catalog) Add(op *Operation) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.operations[op.Name]; exists {
		return fmt.Errorf("%w: %s", constants.ErrDuplicateOperation, op.Name)
	}

	c.operations[op.Name] = op

	return nil
}

// Lookup returns the named operation.
func (c *Catalog) Lookup(name string) (*Operation, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	op, ok := c.operations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schematics.ErrUnknownOperation, name)
	}

	return op, nil
}

// Merge overlays the operations of other onto c.
func (c *Catalog) Merge(other *Catalog) {
	other.mutex.RLock()
	defer other.mutex.RUnlock()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for name, op := range other.operations {
		c.operations[name] = op
	}
}

// Names returns the sorted operation names.
func (c *Catalog) Names() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	names := make([]string, 0, len(c.operations))
	for name := range c.operations {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Len returns the number of operations.
func (c *Catalog) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.operations)
}

func read(name, path string) *Operation {
	return &Operation{Name: name, Method: http.MethodGet, Path: path, Idempotent: true}
}

func create(name, path string) *Operation {
	return &Operation{Name: name, Method: http.MethodPost, Path: path, AcceptsBody: true}
}

func update(name, path string) *Operation {
	return &Operation{Name: name, Method: http.MethodPatch, Path: path, AcceptsBody: true}
}

func remove(name, path string) *Operation {
	return &Operation{Name: name, Method: http.MethodDelete, Path: path, Idempotent: true}
}

// Builtin returns a fresh catalog of the operations the resource clients use.
func Builtin() *Catalog {
	return NewCatalog(
		read(ListWorkspaces, "/v1/workspaces"),
		read(GetWorkspace, "/v1/workspaces/{w_id}"),
		create(CreateWorkspace, "/v1/workspaces"),
		update(UpdateWorkspace, "/v1/workspaces/{w_id}"),
		remove(DeleteWorkspace, "/v1/workspaces/{w_id}"),
		&Operation{
			Name:        UploadTemplate,
			Method:      http.MethodPut,
			Path:        "/v1/workspaces/{w_id}/template_data/{t_id}/template_repo_upload",
			Idempotent:  true,
			AcceptsBody: true,
			Multipart:   true,
		},
		read(GetWorkspaceOutputs, "/v1/workspaces/{w_id}/output_values"),

		read(ListJobs, "/v2/jobs"),
		read(GetJob, "/v2/jobs/{job_id}"),
		create(CreateJob, "/v2/jobs"),
		remove(DeleteJob, "/v2/jobs/{job_id}"),
		read(ListJobLogs, "/v2/jobs/{job_id}/logs"),

		read(ListAgents, "/v2/agents"),
		read(GetAgent, "/v2/agents/{agent_id}"),
		create(CreateAgent, "/v2/agents"),
		update(UpdateAgent, "/v2/agents/{agent_id}"),
		remove(DeleteAgent, "/v2/agents/{agent_id}"),
		// Deploying starts a job on every call.
		&Operation{Name: DeployAgent, Method: http.MethodPut, Path: "/v2/agents/{agent_id}/deploy"},

		read(ListInventories, "/v2/inventories"),
		read(GetInventory, "/v2/inventories/{inventory_id}"),
		create(CreateInventory, "/v2/inventories"),
		update(UpdateInventory, "/v2/inventories/{inventory_id}"),
		remove(DeleteInventory, "/v2/inventories/{inventory_id}"),

		read(ListBlueprints, "/v2/blueprints"),
		read(GetBlueprint, "/v2/blueprints/{blueprint_id}"),
		create(CreateBlueprint, "/v2/blueprints"),
		update(UpdateBlueprint, "/v2/blueprints/{blueprint_id}"),
		remove(DeleteBlueprint, "/v2/blueprints/{blueprint_id}"),
		&Operation{Name: InstallBlueprint, Method: http.MethodPost, Path: "/v2/blueprints/{blueprint_id}/install"},
	)
}
