package operation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
	schematicshttp "github.com/fivetwenty-io/schematics-client/internal/http"
	"github.com/getkin/kin-openapi/openapi3"
)

// LoadOpenAPIFile reads an OpenAPI 3 document from disk and derives a catalog
// from it.
func LoadOpenAPIFile(ctx context.Context, path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from client configuration
	if err != nil {
		return nil, fmt.Errorf("reading OpenAPI document: %w", err)
	}

	return LoadOpenAPI(ctx, data)
}

// LoadOpenAPI derives a catalog from an OpenAPI 3 document. Each operation
// becomes a catalog entry named after its operationId.
func LoadOpenAPI(ctx context.Context, data []byte) (*Catalog, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	err = doc.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("validating OpenAPI document: %w", err)
	}

	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, constants.ErrEmptyDocument
	}

	catalog := NewCatalog()

	for path, item := range doc.Paths.Map() {
		for method, definition := range item.Operations() {
			if definition.OperationID == "" {
				return nil, fmt.Errorf("%w: %s %s", constants.ErrMissingOperationID, method, path)
			}

			op := &Operation{
				Name:       definition.OperationID,
				Method:     strings.ToUpper(method),
				Path:       path,
				Idempotent: schematicshttp.IsIdempotentMethod(method),
				Summary:    definition.Summary,
			}

			if definition.RequestBody != nil && definition.RequestBody.Value != nil {
				op.AcceptsBody = true
				op.Multipart = definition.RequestBody.Value.Content.Get("multipart/form-data") != nil
			}

			if definition.Security != nil && len(*definition.Security) == 0 {
				op.Unauthenticated = true
			}

			op.ResultSchema, err = resultSchema(doc, definition)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", definition.OperationID, err)
			}

			err = catalog.Add(op)
			if err != nil {
				return nil, err
			}
		}
	}

	return catalog, nil
}

// resultSchema returns the JSON schema of the operation's 200 or 201 JSON
// response. Component schemas travel along so local references resolve.
func resultSchema(doc *openapi3.T, definition *openapi3.Operation) ([]byte, error) {
	if definition.Responses == nil {
		return nil, nil
	}

	for _, status := range []int{http.StatusOK, http.StatusCreated} {
		response := definition.Responses.Status(status)
		if response == nil || response.Value == nil {
			continue
		}

		media := response.Value.Content.Get("application/json")
		if media == nil || media.Schema == nil {
			continue
		}

		var root map[string]any

		encoded, err := json.Marshal(media.Schema)
		if err != nil {
			return nil, fmt.Errorf("encoding result schema: %w", err)
		}

		err = json.Unmarshal(encoded, &root)
		if err != nil {
			return nil, fmt.Errorf("encoding result schema: %w", err)
		}

		if doc.Components != nil && len(doc.Components.Schemas) > 0 {
			root["components"] = map[string]any{"schemas": doc.Components.Schemas}
		}

		schema, err := json.Marshal(root)
		if err != nil {
			return nil, fmt.Errorf("encoding result schema: %w", err)
		}

		return schema, nil
	}

	return nil, nil
}
