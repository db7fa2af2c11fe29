package decode_test

import (
	"net/http"
	"testing"

	"github.com/fivetwenty-io/schematics-client/internal/decode"
	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workspaceSchema = `{
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"}
  }
}`

func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		headers   http.Header
		body      string
		message   string
		code      string
		requestID string
	}{
		{
			name:    "message field",
			status:  404,
			body:    `{"message":"not found"}`,
			message: "not found",
		},
		{
			name:    "error and code fields",
			status:  400,
			body:    `{"error":"invalid_request","code":"E4001"}`,
			message: "invalid_request",
			code:    "E4001",
		},
		{
			name:    "numeric code",
			status:  409,
			body:    `{"message":"conflict","code":409}`,
			message: "conflict",
			code:    "409",
		},
		{
			name:    "iam shape",
			status:  400,
			body:    `{"errorCode":"BXNIM0415E","errorMessage":"Provided API key could not be found."}`,
			message: "Provided API key could not be found.",
			code:    "BXNIM0415E",
		},
		{
			name:      "nested errors list with trace",
			status:    403,
			body:      `{"errors":[{"code":"forbidden","message":"no access"}],"trace":"abc-123"}`,
			message:   "no access",
			code:      "forbidden",
			requestID: "abc-123",
		},
		{
			name:      "request id header wins",
			status:    500,
			headers:   http.Header{"X-Request-Id": []string{"req-1"}},
			body:      `{"message":"boom","trace":"ignored"}`,
			message:   "boom",
			requestID: "req-1",
		},
		{
			name:    "plain text body",
			status:  502,
			body:    "  Bad Gateway from proxy \n",
			message: "Bad Gateway from proxy",
		},
		{
			name:   "empty body",
			status: 503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := decode.Error("get_workspace", tt.status, tt.headers, []byte(tt.body))

			var apiErr *schematics.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "get_workspace", apiErr.Operation)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.requestID, apiErr.RequestID)
			assert.Equal(t, tt.body, string(apiErr.Body))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("typed body", func(t *testing.T) {
		t.Parallel()

		headers := http.Header{"X-Request-Id": []string{"r1"}}
		body := []byte(`{"id":"w1","name":"demo","status":"ACTIVE"}`)

		result, err := decode.Decode[schematics.Workspace]("get_workspace", 200, headers, body, nil)
		require.NoError(t, err)
		require.NotNil(t, result.Data)
		assert.Equal(t, "w1", result.Data.ID)
		assert.Equal(t, "ACTIVE", result.Data.Status)
		assert.Equal(t, 200, result.StatusCode)
		assert.Equal(t, "r1", result.RequestID)
		assert.Equal(t, body, result.Raw)
	})

	t.Run("empty success body", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{200, 202, 204} {
			result, err := decode.Decode[schematics.Workspace]("delete_workspace", status, nil, nil, nil)
			require.NoError(t, err)
			assert.Nil(t, result.Data)
			assert.True(t, result.Empty())
			assert.Equal(t, status, result.StatusCode)
		}

		result, err := decode.Decode[schematics.Workspace]("delete_workspace", 200, nil, []byte("  \n"), nil)
		require.NoError(t, err)
		assert.Nil(t, result.Data)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		_, err := decode.Decode[schematics.Workspace]("get_workspace", 200, nil, []byte(`{"id":`), nil)

		var decodeErr *schematics.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, 200, decodeErr.StatusCode)
		assert.Equal(t, "get_workspace", decodeErr.Operation)
	})

	t.Run("wrong shape is not coerced", func(t *testing.T) {
		t.Parallel()

		_, err := decode.Decode[schematics.Workspace]("get_workspace", 200, nil, []byte(`{"id":42}`), nil)

		var decodeErr *schematics.DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()

		_, err := decode.Decode[schematics.Workspace]("get_workspace", 404, nil, []byte(`{"message":"not found"}`), nil)
		assert.True(t, schematics.IsNotFound(err))
	})

	t.Run("schema validation", func(t *testing.T) {
		t.Parallel()

		result, err := decode.Decode[schematics.Workspace]("get_workspace", 200, nil,
			[]byte(`{"id":"w1","name":"demo"}`), []byte(workspaceSchema))
		require.NoError(t, err)
		assert.Equal(t, "demo", result.Data.Name)

		_, err = decode.Decode[schematics.Workspace]("get_workspace", 200, nil,
			[]byte(`{"id":"w1"}`), []byte(workspaceSchema))

		var decodeErr *schematics.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		require.ErrorIs(t, err, decode.ErrSchemaMismatch)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("invalid schema", func(t *testing.T) {
		t.Parallel()

		_, err := decode.Decode[schematics.Workspace]("get_workspace", 200, nil,
			[]byte(`{"id":"w1"}`), []byte(`{"type": 12}`))
		require.ErrorIs(t, err, decode.ErrInvalidSchema)
	})
}
