package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPath is the endpoint of the rewriting service.
const DefaultPath = "/api/rewrite"

// FallbackMessage is shown when a failed response carries no error text.
const FallbackMessage = "Something went wrong"

// Rewriter submits a draft and returns the service's result.
type Rewriter interface {
	Rewrite(ctx context.Context, req DraftRequest) (Result, error)
}

// StatusError is returned for non-2xx responses whose body parsed as JSON.
type StatusError struct {
	Code    int
	Message string // parsed error field, or FallbackMessage
	Result  Result
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rewrite: status %d: %s", e.Code, e.Message)
}

// DecodeError is returned when the response body is not valid JSON.
type DecodeError struct {
	Code int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rewrite: decode response (status %d): %v", e.Code, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client posts drafts to the rewriting service.
type Client struct {
	BaseURL string            // Service base URL (no trailing slash).
	Path    string            // Endpoint path; DefaultPath when empty.
	Client  *http.Client      // HTTP client; falls back to http.DefaultClient.
	Headers map[string]string // Extra headers applied to every request.
	Logger  *slog.Logger      // Optional; nil disables logging.
}

var _ Rewriter = (*Client)(nil)

// NewClient creates a Client for baseURL. A nil client falls back to
// http.DefaultClient at call time.
func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}

	return http.DefaultClient
}

func (c *Client) endpoint() string {
	p := c.Path
	if p == "" {
		p = DefaultPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return c.BaseURL + p
}

func (c *Client) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.New(slog.DiscardHandler)
}

// NewRequest builds the POST request for req with JSON headers, a fresh
// X-Request-ID and the custom headers applied.
func (c *Client) NewRequest(ctx context.Context, req DraftRequest) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("rewrite: marshal payload: %w", err)
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rewrite: build request: %w", err)
	}

	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")
	hr.Header.Set("X-Request-ID", uuid.NewString())

	for k, v := range c.Headers {
		hr.Header.Set(k, v)
	}

	return hr, nil
}

// Rewrite sends req and decodes the response. The body is always decoded
// first; a non-2xx status then becomes a *StatusError using the decoded error
// field. A 2xx body that itself carries an error is returned as a Result, not
// as an error.
func (c *Client) Rewrite(ctx context.Context, req DraftRequest) (Result, error) {
	hr, err := c.NewRequest(ctx, req)
	if err != nil {
		return Result{}, err
	}

	id := hr.Header.Get("X-Request-ID")
	start := time.Now()
	c.log().Debug("rewrite request", "id", id, "url", hr.URL.String())

	resp, err := c.httpClient().Do(hr) //nolint:gosec // URL comes from trusted config
	if err != nil {
		c.log().Warn("rewrite transport failed", "id", id, "error", err)
		return Result{}, fmt.Errorf("rewrite: do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log().Warn("rewrite read failed", "id", id, "status", resp.StatusCode, "error", err)
		return Result{}, fmt.Errorf("rewrite: read response: %w", err)
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		c.log().Warn("rewrite decode failed", "id", id, "status", resp.StatusCode, "error", err)
		return Result{}, &DecodeError{Code: resp.StatusCode, Err: err}
	}

	c.log().Info("rewrite done",
		"id", id,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"result_error", res.Error != "",
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := res.Error
		if msg == "" {
			msg = FallbackMessage
		}

		return res, &StatusError{Code: resp.StatusCode, Message: msg, Result: res}
	}

	return res, nil
}

// Message returns the text to show for a failed submission: the service's
// error field for status errors, the underlying transport error for network
// failures, the decoder's message for malformed bodies.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}

	var de *DecodeError
	if errors.As(err, &de) {
		return de.Err.Error()
	}

	var mf *MissingFieldsError
	if errors.As(err, &mf) {
		return mf.Error()
	}

	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}

	return err.Error()
}
