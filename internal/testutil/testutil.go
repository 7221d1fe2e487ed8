// Package testutil holds HTTP helpers shared by handler and end-to-end tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookreview/internal/platform/crypto"

	"github.com/stretchr/testify/require"
)

// Token issues a valid access token for userID.
func Token(t *testing.T, secret, userID string) string {
	t.Helper()
	token, err := crypto.GenerateToken(secret, userID, time.Hour)
	require.NoError(t, err)
	return token
}

// ExpiredToken issues a correctly signed token that expired an hour ago.
func ExpiredToken(t *testing.T, secret, userID string) string {
	t.Helper()
	token, err := crypto.GenerateToken(secret, userID, -time.Hour)
	require.NoError(t, err)
	return token
}

// NewRequest builds a request with body encoded as JSON.
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRequestWithAuth is NewRequest with a bearer token.
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// Response is a decoded JSON envelope.
type Response struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// Data returns the envelope's data object, or nil when it is not an object.
func (r Response) Data() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

// List returns the envelope's data array.
func (r Response) List() []any {
	l, _ := r.Body["data"].([]any)
	return l
}

// Meta returns the envelope's meta object.
func (r Response) Meta() map[string]any {
	m, _ := r.Body["meta"].(map[string]any)
	return m
}

// ErrorCode returns error.code from an error envelope.
func (r Response) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// Record decodes the recorded response.
func Record(w *httptest.ResponseRecorder) Response {
	result := w.Result()
	defer result.Body.Close()

	b, _ := io.ReadAll(result.Body)
	var body map[string]any
	if len(b) > 0 {
		_ = json.Unmarshal(b, &body)
	}
	return Response{Code: result.StatusCode, Header: result.Header, Body: body}
}

// Do serves r on h and decodes the response.
func Do(h http.Handler, r *http.Request) Response {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return Record(w)
}
