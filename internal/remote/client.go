// Package remote is the request/response client for the profile and content
// services. Calls are never retried and carry no client-side timeout; the
// caller's context is the only way to bound them.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotConfigured is returned when a service has no base URL.
var ErrNotConfigured = errors.New("remote service not configured")

// NetworkError reports a transport failure or a response that is not JSON.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError reports an application-level failure: an HTTP status of 400 or
// more, or a truthy top-level "error" field in the decoded body.
//
//nolint:revive // remote.RemoteError reads naturally at call sites.
type RemoteError struct {
	Status  int
	Body    []byte
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote error (status %d)", e.Status)
}

// Client talks JSON to a single base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient uses a client
// without a timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// NewServices builds the profile and content services on one shared HTTP
// client without a timeout.
func NewServices(profileURL, contentURL string) (*ProfileService, *ContentService) {
	httpClient := &http.Client{}
	return NewProfileService(NewClient(profileURL, httpClient)), NewContentService(NewClient(contentURL, httpClient))
}

// Configured reports whether the client has a base URL.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// Get issues a GET and returns the decoded JSON body.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: url, Err: fmt.Errorf("read response: %w", err)}
	}
	return decodeResponse(method, url, resp.StatusCode, raw)
}

// decodeResponse classifies a response. A failing status wins over a
// malformed body so callers can still see the server's status.
func decodeResponse(method, url string, status int, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("null")
	}
	valid := gjson.ValidBytes(trimmed)

	if status >= http.StatusBadRequest {
		rerr := &RemoteError{Status: status, Body: raw}
		if valid {
			rerr.Message = errorMessage(trimmed)
		}
		return nil, rerr
	}
	if !valid {
		return nil, &NetworkError{Method: method, URL: url, Err: errors.New("response is not JSON")}
	}
	if indicator := gjson.GetBytes(trimmed, "error"); truthy(indicator) {
		return nil, &RemoteError{Status: status, Body: raw, Message: errorMessage(trimmed)}
	}
	return json.RawMessage(trimmed), nil
}

// truthy follows JSON-as-JavaScript truthiness: false, null, 0 and "" are
// falsy; objects and arrays are always truthy.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True, gjson.JSON:
		return true
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	default:
		return false
	}
}

func errorMessage(body []byte) string {
	for _, path := range []string{"error.message", "error", "detail", "message"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
