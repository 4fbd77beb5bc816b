package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/models"
)

// HTTPClient implements DataSource by calling the posecoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the catalog lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrExerciseNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]catalog.Exercise, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []catalog.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) GetExercise(ctx context.Context, name string) (*catalog.Exercise, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}

	var ex catalog.Exercise
	if err := json.Unmarshal(body, &ex); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise: %w", err)
	}
	return &ex, nil
}

func (c *HTTPClient) Score(ctx context.Context, req ScoreRequest) (*models.PostureScore, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/score", req)
	if err != nil {
		return nil, err
	}

	var score models.PostureScore
	if err := json.Unmarshal(body, &score); err != nil {
		return nil, fmt.Errorf("httpclient: decode score: %w", err)
	}
	return &score, nil
}
