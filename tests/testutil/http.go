package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIClient sends requests straight to an http.Handler
type APIClient struct {
	t       *testing.T
	handler http.Handler
	prefix  string
}

// NewAPIClient returns a client whose paths are relative to prefix (e.g. /api/v1)
func NewAPIClient(t *testing.T, handler http.Handler, prefix string) *APIClient {
	return &APIClient{t: t, handler: handler, prefix: prefix}
}

// APIResponse is a recorded response with its envelope decoded
type APIResponse struct {
	Code    int             `json:"-"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Raw string `json:"-"`
}

// Do sends method path with an optional JSON body and header pairs
func (c *APIClient) Do(method, path string, body any, headers ...string) *APIResponse {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(c.t, err, "Failed to marshal request body")
			reader = strings.NewReader(string(data))
		}
	}
	req := httptest.NewRequest(method, c.prefix+path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &APIResponse{Code: w.Code, Raw: w.Body.String()}
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), resp), "Failed to parse response: %s", resp.Raw)
	}
	return resp
}

// Decode unmarshals the data field into out
func (r *APIResponse) Decode(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, out), "Failed to parse data: %s", r.Raw)
}

// RequireOK fails unless the status is want and the envelope reports success
func (r *APIResponse) RequireOK(t *testing.T, want int) *APIResponse {
	t.Helper()
	require.Equal(t, want, r.Code, r.Raw)
	require.True(t, r.Success, r.Raw)
	return r
}

// AssertError asserts an error envelope with the given status and code
func (r *APIResponse) AssertError(t *testing.T, status int, code string) {
	t.Helper()
	assert.Equal(t, status, r.Code, r.Raw)
	assert.False(t, r.Success)
	if assert.NotNil(t, r.Error, r.Raw) {
		assert.Equal(t, code, r.Error.Code)
	}
}
