package schematics

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// Result is the outcome of a successful call: raw status and headers next to
// the decoded body. Data is nil when the service answered with an empty body.
type Result[T any] struct {
	Operation  string
	StatusCode int
	Headers    http.Header
	Data       *T
	// Raw holds the undecoded body for diagnostics.
	Raw       []byte
	RequestID string
}

// Empty reports whether the response carried no decoded value.
func (r *Result[T]) Empty() bool {
	return r == nil || r.Data == nil
}

// ListResponse is the envelope shared by all list operations.
type ListResponse[T any] struct {
	Count         int    `json:"count"                     yaml:"count"`
	Limit         int    `json:"limit"                     yaml:"limit"`
	Offset        int    `json:"offset"                    yaml:"offset"`
	Resources     []T    `json:"resources"                 yaml:"resources"`
	NextPageToken string `json:"next_page_token,omitempty" yaml:"next_page_token,omitempty"`
}

// File is a file-bearing body part for multipart operations.
type File struct {
	// Field is the form field name; "file" when empty.
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Params carries the caller's arguments for one operation call.
type Params struct {
	Path    map[string]string
	Query   map[string]any
	Headers map[string]string
	Body    any
	Files   []File
	// Timeout overrides the client's per-call timeout when positive.
	Timeout time.Duration
}

// ListParams expresses the common list options.
type ListParams struct {
	Limit   int
	Offset  int
	Start   string
	Profile string
	Sort    string
	Filters map[string]string
}

// NewListParams creates empty list parameters.
func NewListParams() *ListParams {
	return &ListParams{}
}

// WithLimit sets the page size.
func (p *ListParams) WithLimit(limit int) *ListParams {
	p.Limit = limit

	return p
}

// WithOffset sets the offset of the first item.
func (p *ListParams) WithOffset(offset int) *ListParams {
	p.Offset = offset

	return p
}

// WithProfile sets the response profile ("ids" or "summary").
func (p *ListParams) WithProfile(profile string) *ListParams {
	p.Profile = profile

	return p
}

// WithSort sets the sort expression.
func (p *ListParams) WithSort(sort string) *ListParams {
	p.Sort = sort

	return p
}

// WithFilter adds a filter query parameter.
func (p *ListParams) WithFilter(key, value string) *ListParams {
	if p.Filters == nil {
		p.Filters = make(map[string]string)
	}

	p.Filters[key] = value

	return p
}

// ToQuery converts the parameters into operation query values. Unset fields
// are left out.
func (p *ListParams) ToQuery() map[string]any {
	query := make(map[string]any)
	if p == nil {
		return query
	}

	if p.Limit > 0 {
		query["limit"] = p.Limit
	}

	if p.Offset > 0 {
		query["offset"] = p.Offset
	}

	if p.Start != "" {
		query["start"] = p.Start
	}

	if p.Profile != "" {
		query["profile"] = p.Profile
	}

	if p.Sort != "" {
		query["sort"] = p.Sort
	}

	for key, value := range p.Filters {
		query[key] = value
	}

	return query
}

// Clone returns a copy that can be mutated without touching the original.
func (p *ListParams) Clone() *ListParams {
	if p == nil {
		return NewListParams()
	}

	clone := *p
	if p.Filters != nil {
		clone.Filters = make(map[string]string, len(p.Filters))
		for key, value := range p.Filters {
			clone.Filters[key] = value
		}
	}

	return &clone
}

// String renders the parameters for logs.
func (p *ListParams) String() string {
	if p == nil {
		return "{}"
	}

	return "{limit=" + strconv.Itoa(p.Limit) + " offset=" + strconv.Itoa(p.Offset) + " start=" + p.Start + "}"
}

// TemplateRepo points a workspace or blueprint at a source repository.
type TemplateRepo struct {
	URL    string `json:"url"              yaml:"url"`
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Workspace represents an automation workspace.
type Workspace struct {
	ID            string        `json:"id"                      yaml:"id"`
	Name          string        `json:"name"                    yaml:"name"`
	Description   string        `json:"description,omitempty"   yaml:"description,omitempty"`
	Location      string        `json:"location,omitempty"      yaml:"location,omitempty"`
	ResourceGroup string        `json:"resource_group,omitempty" yaml:"resource_group,omitempty"`
	Status        string        `json:"status,omitempty"        yaml:"status,omitempty"`
	Tags          []string      `json:"tags,omitempty"          yaml:"tags,omitempty"`
	Type          []string      `json:"type,omitempty"          yaml:"type,omitempty"`
	TemplateRepo  *TemplateRepo `json:"template_repo,omitempty" yaml:"template_repo,omitempty"`
	CreatedAt     *time.Time    `json:"created_at,omitempty"    yaml:"created_at,omitempty"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"    yaml:"updated_at,omitempty"`
}

// WorkspaceCreateRequest is the body of a workspace create call.
type WorkspaceCreateRequest struct {
	Name          string        `json:"name"                     yaml:"name"`
	Description   string        `json:"description,omitempty"    yaml:"description,omitempty"`
	Location      string        `json:"location,omitempty"       yaml:"location,omitempty"`
	ResourceGroup string        `json:"resource_group,omitempty" yaml:"resource_group,omitempty"`
	Tags          []string      `json:"tags,omitempty"           yaml:"tags,omitempty"`
	Type          []string      `json:"type,omitempty"           yaml:"type,omitempty"`
	TemplateRepo  *TemplateRepo `json:"template_repo,omitempty"  yaml:"template_repo,omitempty"`
}

// WorkspaceUpdateRequest is the body of a workspace update call.
type WorkspaceUpdateRequest struct {
	Name        *string  `json:"name,omitempty"        yaml:"name,omitempty"`
	Description *string  `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"        yaml:"tags,omitempty"`
}

// WorkspaceOutput is a single output value of a workspace template.
type WorkspaceOutput struct {
	TemplateID string           `json:"id"               yaml:"id"`
	Folder     string           `json:"folder,omitempty" yaml:"folder,omitempty"`
	Values     []map[string]any `json:"output_values"    yaml:"output_values"`
}

// TemplateUpload is the result of uploading a template archive.
type TemplateUpload struct {
	ID              string `json:"id"                yaml:"id"`
	HasReceivedFile bool   `json:"has_received_file" yaml:"has_received_file"`
}

// Job represents an action, workspace or environment job.
type Job struct {
	ID               string            `json:"id"                          yaml:"id"`
	Name             string            `json:"name,omitempty"              yaml:"name,omitempty"`
	Description      string            `json:"description,omitempty"       yaml:"description,omitempty"`
	CommandObject    string            `json:"command_object,omitempty"    yaml:"command_object,omitempty"`
	CommandObjectID  string            `json:"command_object_id,omitempty" yaml:"command_object_id,omitempty"`
	CommandName      string            `json:"command_name,omitempty"      yaml:"command_name,omitempty"`
	CommandParameter string            `json:"command_parameter,omitempty" yaml:"command_parameter,omitempty"`
	Location         string            `json:"location,omitempty"          yaml:"location,omitempty"`
	Status           string            `json:"status,omitempty"            yaml:"status,omitempty"`
	Tags             []string          `json:"tags,omitempty"              yaml:"tags,omitempty"`
	Inputs           map[string]string `json:"inputs,omitempty"            yaml:"inputs,omitempty"`
	SubmittedAt      *time.Time        `json:"submitted_at,omitempty"      yaml:"submitted_at,omitempty"`
	StartAt          *time.Time        `json:"start_at,omitempty"          yaml:"start_at,omitempty"`
	EndAt            *time.Time        `json:"end_at,omitempty"            yaml:"end_at,omitempty"`
}

// JobCreateRequest is the body of a job create call.
type JobCreateRequest struct {
	CommandObject    string            `json:"command_object"              yaml:"command_object"`
	CommandObjectID  string            `json:"command_object_id"           yaml:"command_object_id"`
	CommandName      string            `json:"command_name"                yaml:"command_name"`
	CommandParameter string            `json:"command_parameter,omitempty" yaml:"command_parameter,omitempty"`
	Inputs           map[string]string `json:"inputs,omitempty"            yaml:"inputs,omitempty"`
	Tags             []string          `json:"tags,omitempty"              yaml:"tags,omitempty"`
}

// JobLogs holds the log output of a job.
type JobLogs struct {
	JobID   string `json:"job_id"             yaml:"job_id"`
	JobName string `json:"job_name,omitempty" yaml:"job_name,omitempty"`
	Logs    string `json:"logs"               yaml:"logs"`
}

// AgentInfrastructure describes where an agent runs.
type AgentInfrastructure struct {
	InfraType            string `json:"infra_type,omitempty"             yaml:"infra_type,omitempty"`
	ClusterID            string `json:"cluster_id,omitempty"             yaml:"cluster_id,omitempty"`
	ClusterResourceGroup string `json:"cluster_resource_group,omitempty" yaml:"cluster_resource_group,omitempty"`
	COSInstanceName      string `json:"cos_instance_name,omitempty"      yaml:"cos_instance_name,omitempty"`
}

// Agent represents a remote execution agent.
type Agent struct {
	ID                  string               `json:"agent_id"                       yaml:"agent_id"`
	Name                string               `json:"name"                           yaml:"name"`
	Description         string               `json:"description,omitempty"          yaml:"description,omitempty"`
	Version             string               `json:"version,omitempty"              yaml:"version,omitempty"`
	Location            string               `json:"agent_location,omitempty"       yaml:"agent_location,omitempty"`
	ResourceGroup       string               `json:"resource_group,omitempty"       yaml:"resource_group,omitempty"`
	Status              string               `json:"status,omitempty"               yaml:"status,omitempty"`
	Tags                []string             `json:"tags,omitempty"                 yaml:"tags,omitempty"`
	AgentInfrastructure *AgentInfrastructure `json:"agent_infrastructure,omitempty" yaml:"agent_infrastructure,omitempty"`
	CreatedAt           *time.Time           `json:"created_at,omitempty"           yaml:"created_at,omitempty"`
}

// AgentRequest is the body of an agent create or update call.
type AgentRequest struct {
	Name                string               `json:"name,omitempty"                 yaml:"name,omitempty"`
	Description         string               `json:"description,omitempty"          yaml:"description,omitempty"`
	Version             string               `json:"version,omitempty"              yaml:"version,omitempty"`
	Location            string               `json:"agent_location,omitempty"       yaml:"agent_location,omitempty"`
	ResourceGroup       string               `json:"resource_group,omitempty"       yaml:"resource_group,omitempty"`
	Tags                []string             `json:"tags,omitempty"                 yaml:"tags,omitempty"`
	AgentInfrastructure *AgentInfrastructure `json:"agent_infrastructure,omitempty" yaml:"agent_infrastructure,omitempty"`
}

// AgentDeployment is the result of an agent deploy action.
type AgentDeployment struct {
	ID         string `json:"id"                       yaml:"id"`
	JobID      string `json:"job_id"                   yaml:"job_id"`
	Status     string `json:"status_code,omitempty"    yaml:"status_code,omitempty"`
	StatusText string `json:"status_message,omitempty" yaml:"status_message,omitempty"`
}

// Inventory represents a resource inventory used by action jobs.
type Inventory struct {
	ID              string     `json:"id"                         yaml:"id"`
	Name            string     `json:"name"                       yaml:"name"`
	Description     string     `json:"description,omitempty"      yaml:"description,omitempty"`
	Location        string     `json:"location,omitempty"         yaml:"location,omitempty"`
	ResourceGroup   string     `json:"resource_group,omitempty"   yaml:"resource_group,omitempty"`
	InventoriesIni  string     `json:"inventories_ini,omitempty"  yaml:"inventories_ini,omitempty"`
	ResourceQueries []string   `json:"resource_queries,omitempty" yaml:"resource_queries,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"       yaml:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"       yaml:"updated_at,omitempty"`
}

// InventoryRequest is the body of an inventory create or update call.
type InventoryRequest struct {
	Name            string   `json:"name,omitempty"             yaml:"name,omitempty"`
	Description     string   `json:"description,omitempty"      yaml:"description,omitempty"`
	Location        string   `json:"location,omitempty"         yaml:"location,omitempty"`
	ResourceGroup   string   `json:"resource_group,omitempty"   yaml:"resource_group,omitempty"`
	InventoriesIni  string   `json:"inventories_ini,omitempty"  yaml:"inventories_ini,omitempty"`
	ResourceQueries []string `json:"resource_queries,omitempty" yaml:"resource_queries,omitempty"`
}

// BlueprintSource is the git source of a blueprint.
type BlueprintSource struct {
	SourceType string        `json:"source_type"   yaml:"source_type"`
	Git        *TemplateRepo `json:"git,omitempty" yaml:"git,omitempty"`
}

// Blueprint represents a blueprint environment.
type Blueprint struct {
	ID            string           `json:"id"                       yaml:"id"`
	Name          string           `json:"name"                     yaml:"name"`
	Description   string           `json:"description,omitempty"    yaml:"description,omitempty"`
	Location      string           `json:"location,omitempty"       yaml:"location,omitempty"`
	ResourceGroup string           `json:"resource_group,omitempty" yaml:"resource_group,omitempty"`
	State         string           `json:"state,omitempty"          yaml:"state,omitempty"`
	Source        *BlueprintSource `json:"source,omitempty"         yaml:"source,omitempty"`
	Tags          []string         `json:"tags,omitempty"           yaml:"tags,omitempty"`
	CreatedAt     *time.Time       `json:"created_at,omitempty"     yaml:"created_at,omitempty"`
}

// BlueprintRequest is the body of a blueprint create or update call.
type BlueprintRequest struct {
	Name          string           `json:"name,omitempty"           yaml:"name,omitempty"`
	Description   string           `json:"description,omitempty"    yaml:"description,omitempty"`
	Location      string           `json:"location,omitempty"       yaml:"location,omitempty"`
	ResourceGroup string           `json:"resource_group,omitempty" yaml:"resource_group,omitempty"`
	Source        *BlueprintSource `json:"source,omitempty"         yaml:"source,omitempty"`
	Tags          []string         `json:"tags,omitempty"           yaml:"tags,omitempty"`
}
