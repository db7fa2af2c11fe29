package operation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/fivetwenty-io/schematics-client/internal/constants"
	schematicshttp "github.com/fivetwenty-io/schematics-client/internal/http"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/oapi-codegen/runtime"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Build turns an operation and caller parameters into a transport request.
// Every failure is a *schematics.ValidationError and nothing is sent.
func Build(op *Operation, params *schematics.Params) (*schematicshttp.Request, error) {
	if params == nil {
		params = &schematics.Params{}
	}

	path, err := expandPath(op, params.Path)
	if err != nil {
		return nil, err
	}

	query, err := buildQuery(op, params.Query)
	if err != nil {
		return nil, err
	}

	req := &schematicshttp.Request{
		Operation:       op.Name,
		Method:          op.Method,
		Path:            path,
		Query:           query,
		Headers:         make(map[string]string, len(params.Headers)),
		Idempotent:      op.Idempotent,
		Unauthenticated: op.Unauthenticated,
		Timeout:         params.Timeout,
	}

	for key, value := range params.Headers {
		req.Headers[key] = value
	}

	if len(params.Files) > 0 && !op.Multipart {
		return nil, invalid(op, "", constants.ErrFilesNotAccepted.Error())
	}

	if params.Body != nil && !op.AcceptsBody {
		return nil, invalid(op, "", constants.ErrBodyNotAccepted.Error())
	}

	if op.Multipart {
		req.RawBody, req.ContentType, err = encodeMultipart(op, params.Body, params.Files)
		if err != nil {
			return nil, err
		}

		return req, nil
	}

	req.Body = params.Body

	return req, nil
}

// expandPath substitutes each placeholder exactly once, left to right.
// Substituted values are never scanned for further placeholders.
func expandPath(op *Operation, values map[string]string) (string, error) {
	var builder strings.Builder

	rest := op.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			builder.WriteString(rest)

			return builder.String(), nil
		}

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			builder.WriteString(rest)

			return builder.String(), nil
		}

		name := rest[start+1 : start+end]

		value := values[name]
		if value == "" {
			return "", invalid(op, name, constants.ErrMissingPathParameter.Error())
		}

		styled, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
		if err != nil {
			return "", invalid(op, name, err.Error())
		}

		builder.WriteString(rest[:start])
		builder.WriteString(styled)

		rest = rest[start+end+1:]
	}
}

// buildQuery styles query values in form/explode style. Nil values and nil
// pointers are left out.
func buildQuery(op *Operation, values map[string]any) (url.Values, error) {
	query := url.Values{}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		value := values[key]
		if isNil(value) {
			continue
		}

		fragment, err := runtime.StyleParamWithLocation("form", true, key, runtime.ParamLocationQuery, value)
		if err != nil {
			return nil, invalid(op, key, fmt.Sprintf("%v: %v", constants.ErrUnsupportedQueryType, err))
		}

		parsed, err := url.ParseQuery(fragment)
		if err != nil {
			return nil, invalid(op, key, err.Error())
		}

		for name, items := range parsed {
			for _, item := range items {
				query.Add(name, item)
			}
		}
	}

	return query, nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return reflected.IsNil()
	default:
		return false
	}
}

// encodeMultipart writes body fields first, then one part per file using
// the form-data; name="<field>"; filename="<name>" disposition.
func encodeMultipart(op *Operation, body any, files []schematics.File) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	fields, err := bodyFields(body)
	if err != nil {
		return nil, "", invalid(op, "", "encoding multipart fields: "+err.Error())
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		err = writer.WriteField(name, fields[name])
		if err != nil {
			return nil, "", invalid(op, name, err.Error())
		}
	}

	for _, file := range files {
		field := file.Field
		if field == "" {
			field = constants.DefaultFileField
		}

		if file.Content == nil {
			return nil, "", invalid(op, field, "file content is required")
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = constants.DefaultFileContentType
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(field), quoteEscaper.Replace(file.Filename)))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", invalid(op, field, err.Error())
		}

		_, err = io.Copy(part, file.Content)
		if err != nil {
			return nil, "", invalid(op, field, "reading file content: "+err.Error())
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, "", invalid(op, "", err.Error())
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// bodyFields flattens a body into form fields. Strings are sent as-is, other
// values as JSON.
func bodyFields(body any) (map[string]string, error) {
	fields := map[string]string{}
	if isNil(body) {
		return fields, nil
	}

	var generic map[string]any

	switch typed := body.(type) {
	case map[string]string:
		for key, value := range typed {
			fields[key] = value
		}

		return fields, nil
	case map[string]any:
		generic = typed
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling body: %w", err)
		}

		err = json.Unmarshal(encoded, &generic)
		if err != nil {
			return nil, fmt.Errorf("body must encode to a JSON object: %w", err)
		}
	}

	for key, value := range generic {
		if text, ok := value.(string); ok {
			fields[key] = text

			continue
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshaling field %s: %w", key, err)
		}

		fields[key] = string(encoded)
	}

	return fields, nil
}

func invalid(op *Operation, parameter, reason string) *schematics.ValidationError {
	return &schematics.ValidationError{Operation: op.Name, Parameter: parameter, Reason: reason}
}
