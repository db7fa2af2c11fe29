// Package decode turns raw responses into typed results or typed errors.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/xeipuuv/gojsonschema"
)

const maxMessageLength = 512

// Static errors for err113 compliance.
var (
	ErrSchemaMismatch = errors.New("response does not match schema")
	ErrInvalidSchema  = errors.New("invalid result schema")
)

// errorBody covers the error shapes the service and its token endpoint use.
type errorBody struct {
	Message      string          `json:"message"`
	Description  string          `json:"description"`
	Error        json.RawMessage `json:"error"`
	Code         json.RawMessage `json:"code"`
	ErrorCode    string          `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
	Trace        string          `json:"trace"`
	Errors       []struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"errors"`
}

var schemaCache sync.Map

// IsSuccess reports whether status is a 2xx status.
func IsSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// Error builds the *schematics.APIError for a non-success response. JSON
// bodies contribute their message and code; other bodies are carried as
// text.
func Error(operation string, status int, headers http.Header, body []byte) error {
	apiErr := &schematics.APIError{
		Operation:  operation,
		StatusCode: status,
		Headers:    headers,
		Body:       body,
		RequestID:  requestID(headers),
	}

	trimmed := bytes.TrimSpace(body)

	var parsed errorBody

	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &parsed) == nil {
		apiErr.Message = firstNonEmpty(parsed.Message, parsed.ErrorMessage, text(parsed.Error), parsed.Description)
		apiErr.Code = firstNonEmpty(text(parsed.Code), parsed.ErrorCode)

		if len(parsed.Errors) > 0 {
			apiErr.Message = firstNonEmpty(apiErr.Message, parsed.Errors[0].Message)
			apiErr.Code = firstNonEmpty(apiErr.Code, text(parsed.Errors[0].Code))
		}

		if apiErr.RequestID == "" {
			apiErr.RequestID = parsed.Trace
		}
	} else if len(trimmed) > 0 {
		apiErr.Message = truncate(string(trimmed))
	}

	return apiErr
}

// Decode decodes a response body into a typed result. An empty success body
// yields a result with nil Data. A body that does not parse, or does not match
// schema when one is given, yields a *schematics.DecodeError.
func Decode[T any](operation string, status int, headers http.Header, body []byte, schema []byte) (*schematics.Result[T], error) {
	if !IsSuccess(status) {
		return nil, Error(operation, status, headers, body)
	}

	result := &schematics.Result[T]{
		Operation:  operation,
		StatusCode: status,
		Headers:    headers,
		Raw:        body,
		RequestID:  requestID(headers),
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}

	if len(schema) > 0 {
		err := validate(schema, body)
		if err != nil {
			return nil, &schematics.DecodeError{Operation: operation, StatusCode: status, Body: body, Cause: err}
		}
	}

	data := new(T)

	err := json.Unmarshal(body, data)
	if err != nil {
		return nil, &schematics.DecodeError{Operation: operation, StatusCode: status, Body: body, Cause: err}
	}

	result.Data = data

	return result, nil
}

func validate(schema, body []byte) error {
	key := string(schema)

	compiled, ok := schemaCache.Load(key)
	if !ok {
		loaded, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}

		compiled, _ = schemaCache.LoadOrStore(key, loaded)
	}

	result, err := compiled.(*gojsonschema.Schema).Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validating response: %w", err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		messages = append(messages, resultErr.String())
	}

	return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(messages, "; "))
}

func requestID(headers http.Header) string {
	if headers == nil {
		return ""
	}

	return firstNonEmpty(headers.Get(constants.HeaderRequestID), headers.Get(constants.HeaderCorrelationID))
}

// text renders a JSON scalar as plain text: strings lose their quotes,
// numbers keep their literal form.
func text(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var value string
	if json.Unmarshal(raw, &value) == nil {
		return value
	}

	var nested struct {
		Message string `json:"message"`
	}
	if raw[0] == '{' && json.Unmarshal(raw, &nested) == nil {
		return nested.Message
	}

	return string(raw)
}

func truncate(value string) string {
	if len(value) <= maxMessageLength {
		return value
	}

	return value[:maxMessageLength] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
