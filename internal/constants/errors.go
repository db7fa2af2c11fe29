package constants

import "errors"

// Configuration errors.
var (
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrTokenCacheNotFound = errors.New("token cache file not found")
	ErrNotRegularFile     = errors.New("path is not a regular file")
)

// Request construction errors.
var (
	ErrMissingPathParameter = errors.New("missing required path parameter")
	ErrBodyNotAccepted      = errors.New("operation does not accept a request body")
	ErrFilesNotAccepted     = errors.New("operation does not accept file uploads")
	ErrUnsupportedQueryType = errors.New("unsupported query parameter type")
)

// Catalog errors.
var (
	ErrDuplicateOperation = errors.New("duplicate operation name")
	ErrMissingOperationID = errors.New("operation has no operationId")
	ErrEmptyDocument      = errors.New("OpenAPI document defines no paths")
)
