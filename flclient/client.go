// Package flclient is a client for the FitLayout REST API. A Client is bound
// to one server and one artifact repository; repository-scoped endpoints live
// under api/r/{repository}/ and global ones under api/.
package flclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	BaseURL    string
	Repository string
	HTTPClient *http.Client
}

// New binds a client to a server URL and repository id. Neither value is
// validated here; malformed input surfaces from the first request.
func New(serverURL, repository string, httpClient *http.Client) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(serverURL, "/"),
		Repository: repository,
		HTTPClient: httpClient,
	}
}

// Ping checks server availability and returns the server's response text.
func (c *Client) Ping(ctx context.Context) (string, error) {
	body, err := c.doRaw(ctx, http.MethodGet, "api/ping", nil, nil)
	if err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) repoPath(path string) string {
	return "api/r/" + url.PathEscape(c.Repository) + "/" + path
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	raw, err := c.doRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	requestURL := c.BaseURL + "/" + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("FitLayout request", "method", method, "url", requestURL)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %s: %s", http.StatusText(e.Status), e.Body)
}
