package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewTestClient creates a client for baseURL with a static token and fast
// retries.
func NewTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(context.Background(), &schematics.Config{
		APIEndpoint:  baseURL,
		AccessToken:  "test-token",
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	return client
}

// TestOperation describes one resource client call and the request it must
// produce.
type TestOperation struct {
	Name         string
	Method       string
	ExpectedPath string
	// ExpectedBody, when set, is compared with the decoded JSON request body.
	ExpectedBody map[string]interface{}
	StatusCode   int
	Response     interface{}
	Call         func(ctx context.Context, client *Client) (interface{}, error)
	WantErr      bool
	Check        func(t *testing.T, result interface{})
}

// RunOperationTests runs each operation against its own server.
func RunOperationTests(t *testing.T, tests []TestOperation) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.Method, request.Method)
				assert.Equal(t, testCase.ExpectedPath, request.URL.EscapedPath())
				assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))

				if testCase.ExpectedBody != nil {
					raw, err := io.ReadAll(request.Body)
					assert.NoError(t, err)

					var body map[string]interface{}

					assert.NoError(t, json.Unmarshal(raw, &body))
					assert.Equal(t, testCase.ExpectedBody, body)
				}

				writer.Header().Set("Content-Type", "application/json")
				writer.WriteHeader(testCase.StatusCode)

				if testCase.Response != nil {
					_ = json.NewEncoder(writer).Encode(testCase.Response)
				}
			}))
			defer server.Close()

			result, err := testCase.Call(context.Background(), NewTestClient(t, server.URL))

			if testCase.WantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			if testCase.Check != nil {
				testCase.Check(t, result)
			}
		})
	}
}
