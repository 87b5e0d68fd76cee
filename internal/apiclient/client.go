package apiclient

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

	"movelite-client/internal/metrics"
	"movelite-client/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is used when no base URL is configured
	DefaultBaseURL = "http://localhost:3000"
	// DefaultTimeout bounds every request
	DefaultTimeout = 10 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.ClientMetrics
}

// Client talks JSON to the Move & Lite API
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	session    *session.Session
	metrics    *metrics.ClientMetrics
}

// New creates a client bound to sess
func New(sess *session.Session, opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if sess == nil {
		sess = session.New()
	}

	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
		session:    sess,
		metrics:    opts.Metrics,
	}
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session the client reads its token from
func (c *Client) Session() *session.Session {
	return c.session
}

// Request describes one API call
type Request struct {
	Method string
	// Path is appended to the base URL and may carry a query string
	Path string
	// Route labels metrics; defaults to Path
	Route string
	Body  any
	// Anonymous suppresses the Authorization header
	Anonymous bool
}

// Response is a fully read API response
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do sends req and reads the whole response within the client timeout
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	route := req.Route
	if route == "" {
		route = req.Path
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)
	if !req.Anonymous {
		if token := c.session.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(ctx, method, route, requestID, start, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, method, route, requestID, start, err)
	}

	outcome := metrics.OutcomeOK
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = metrics.OutcomeAPIError
	}
	elapsed := time.Since(start)
	c.metrics.Observe(method, route, outcome, elapsed)

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("API request finished")

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func (c *Client) fail(ctx context.Context, method, route, requestID string, start time.Time, err error) error {
	elapsed := time.Since(start)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.metrics.Observe(method, route, metrics.OutcomeTimeout, elapsed)
		log.Warn().
			Str("request_id", requestID).
			Str("method", method).
			Str("route", route).
			Dur("timeout", c.timeout).
			Msg("API request aborted")
		return ErrTimeout
	}

	c.metrics.Observe(method, route, metrics.OutcomeTransportError, elapsed)
	log.Warn().
		Err(err).
		Str("request_id", requestID).
		Str("method", method).
		Str("route", route).
		Msg("API request failed")
	return &TransportError{Err: err}
}

// envelope is the common shape of every API response
type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"mensaje"`
}

// call sends req and decodes payload into out when the API reports success.
// Anything else becomes an *APIError carrying the server message or fallback.
func (c *Client) call(ctx context.Context, req Request, fallback string, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	var env envelope
	decodeErr := json.Unmarshal(resp.Body, &env)
	if !resp.OK() || decodeErr != nil || !env.OK {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// AbsoluteURL joins path to base unless it already is an http(s) URL.
// Blank paths yield an empty string.
func AbsoluteURL(base, path string) string {
	cleaned := strings.TrimSpace(path)
	if cleaned == "" {
		return ""
	}
	if strings.HasPrefix(cleaned, "http://") || strings.HasPrefix(cleaned, "https://") {
		return cleaned
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(cleaned, "/")
}

// AbsoluteImageURL resolves path against the API, falling back to fallback
func (c *Client) AbsoluteImageURL(path, fallback string) string {
	if u := AbsoluteURL(c.baseURL, path); u != "" {
		return u
	}
	return AbsoluteURL(c.baseURL, fallback)
}
