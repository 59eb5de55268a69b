package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// jsonClient sends JSON requests to one base URL and buffers the reply.
type jsonClient struct {
	baseURL string
	http    *http.Client
}

func newJSONClient(baseURL string, timeout time.Duration) *jsonClient {
	return &jsonClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type jsonResponse struct {
	StatusCode int
	Body       []byte
}

func (r *jsonResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *jsonResponse) decode(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *jsonClient) do(ctx context.Context, method, path string, body any, header http.Header) (*jsonResponse, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		req.Header[key] = values
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &jsonResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// waitForHealthy polls /health until it answers 200 or maxWait elapses.
func (c *jsonClient) waitForHealthy(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		resp, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
		if err == nil && resp.ok() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy within %v", maxWait)
		case <-ticker.C:
		}
	}
}
