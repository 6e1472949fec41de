package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const chatPath = "/api/external/chat"

// ErrUnavailable wraps transport-level failures (connect, timeout). Callers
// surface these as retryable; nothing was analyzed.
var ErrUnavailable = errors.New("inference service unavailable")

// Client abstracts the remote inference service.
type Client interface {
	Analyze(ctx context.Context, payload Payload) (Result, error)
}

// HTTPClient calls the inference endpoint over HTTP with a bounded timeout.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient constructs an HTTPClient. timeout bounds the whole call; the
// upstream model routinely takes tens of seconds, so the default is 100s.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("INFERENCE_URL is required")
	}
	if timeout <= 0 {
		timeout = 100 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Analyze POSTs the submission payload once and classifies the response.
// Transport failures wrap ErrUnavailable; an HTTP-level or body-level error
// field comes back as a KindError Result, not a Go error.
func (c *HTTPClient) Analyze(ctx context.Context, payload Payload) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return Result{}, fmt.Errorf("%w: request timeout: %v", ErrUnavailable, err)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	result := ParseResult(raw)
	if result.Kind == KindError && resp.StatusCode >= 500 && result.Err == "unrecognized inference response" {
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return result, nil
}

var _ Client = (*HTTPClient)(nil)
