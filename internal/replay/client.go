package replay

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

	"github.com/claude/posecoach/internal/models"
)

const maxAttempts = 3

// Client drives a posecoach server session over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the posecoach server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: time.Second,
	}
}

// OpenSession starts a session on exercise and returns its ID and the
// canonical exercise name the server resolved.
func (c *Client) OpenSession(ctx context.Context, exercise string) (id, resolved string, err error) {
	var info struct {
		SessionID       string `json:"session_id"`
		CurrentExercise string `json:"current_exercise"`
	}
	body := map[string]string{"exercise": exercise}
	if err := c.send(ctx, http.MethodPost, "/api/v1/sessions/", body, http.StatusCreated, &info); err != nil {
		return "", "", fmt.Errorf("opening session: %w", err)
	}
	return info.SessionID, info.CurrentExercise, nil
}

// SendFrame posts one frame to the session and returns the verdict.
// Retries up to 3 times with exponential backoff on transport errors and
// server-side failures.
func (c *Client) SendFrame(ctx context.Context, sessionID string, frame Frame) (*models.FrameResult, error) {
	var res models.FrameResult
	path := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/frames"
	if err := c.send(ctx, http.MethodPost, path, frame, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CloseSession ends the session.
func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	path := "/api/v1/sessions/" + url.PathEscape(sessionID) + "/"
	if err := c.send(ctx, http.MethodDelete, path, nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in any, want int, out any) error {
	var data []byte
	if in != nil {
		var err error
		if data, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == want:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", path, err)
			}
			return nil
		case resp.StatusCode < http.StatusInternalServerError:
			return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, bytes.TrimSpace(body))
		}
		lastErr = fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, bytes.TrimSpace(body))
	}

	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
