package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client answers a single user query against the remote assistant backend.
type Client interface {
	Ask(ctx context.Context, query string) (string, error)
}

// StatusError reports a non-2xx HTTP status from the backend.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("assistant returned status %d", e.Code)
}

// BackendError reports an application-level error field carried in the
// response body. The backend sends it even on HTTP 200.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("assistant error: %s", e.Message)
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// HTTPClient talks to the backend over POST /ask.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Ask(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(askRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode}
	}

	var parsed askResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	// The backend signals failures through an error field even on 200.
	if parsed.Error != "" {
		return "", &BackendError{Message: parsed.Error}
	}

	return parsed.Response, nil
}
