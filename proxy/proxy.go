// Package proxy forwards a bounded set of verbs to the configured upstream
// API and normalizes every response into a decoded JSON value or a typed error.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/journal"
	"github.com/papercomputeco/relay/pkg/metrics"
	"github.com/papercomputeco/relay/pkg/upstream"
)

// Client is the upstream API proxy. It borrows the base URL from the
// upstream.Store once per call and shares a single pooled http.Client.
type Client struct {
	store      *upstream.Store
	httpClient *http.Client
	logger     *zap.Logger
	journal    journal.Storer
	metrics    *metrics.Collector
}

// Option configures optional Client collaborators.
type Option func(*Client)

// WithJournal records every call in s.
func WithJournal(s journal.Storer) Option {
	return func(c *Client) { c.journal = s }
}

// WithMetrics counts every call in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the pooled client built from Config.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client reading its base URL from store.
func New(config Config, store *upstream.Store, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		store:      store,
		httpClient: NewHTTPClient(config),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get forwards a GET request.
func (c *Client) Get(ctx context.Context, endpoint string) (any, error) {
	return c.Forward(ctx, http.MethodGet, endpoint, nil)
}

// Post forwards a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (any, error) {
	return c.Forward(ctx, http.MethodPost, endpoint, body)
}

// Put forwards a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (any, error) {
	return c.Forward(ctx, http.MethodPut, endpoint, body)
}

// Delete forwards a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string) (any, error) {
	return c.Forward(ctx, http.MethodDelete, endpoint, nil)
}

// Forward sends method to base URL + endpoint and returns the decoded JSON
// response. POST and PUT carry body as JSON (nil is sent as {}); GET and
// DELETE ignore it. An empty 2xx body decodes to an empty object.
func (c *Client) Forward(ctx context.Context, method, endpoint string, body any) (any, error) {
	start := time.Now()

	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodPost, http.MethodPut:
	default:
		err := fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
		c.finish(method, endpoint, "", start, 0, 0, err)
		return nil, err
	}

	url, err := c.buildURL(method, endpoint)
	if err != nil {
		c.finish(method, endpoint, "", start, 0, 0, err)
		return nil, err
	}

	var (
		payload     []byte
		contentType string
	)
	if method == http.MethodPost || method == http.MethodPut {
		if body == nil {
			body = map[string]any{}
		}
		data, err := json.Marshal(body)
		if err != nil {
			err = &TransportError{Method: method, URL: url, Err: fmt.Errorf("marshal request: %w", err)}
			c.finish(method, endpoint, url, start, 0, 0, err)
			return nil, err
		}
		payload = data
		contentType = "application/json"
	}

	var value any
	err = c.dispatch(ctx, method, endpoint, url, payload, contentType, start, func(resp *http.Response) (int64, error) {
		v, n, err := classify(method, url, resp)
		value = v
		return n, err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Download fetches base URL + endpoint and returns the raw body, whatever its
// content type.
func (c *Client) Download(ctx context.Context, endpoint string) ([]byte, error) {
	start := time.Now()
	method := http.MethodGet

	url, err := c.buildURL(method, endpoint)
	if err != nil {
		c.finish(method, endpoint, "", start, 0, 0, err)
		return nil, err
	}

	var data []byte
	err = c.dispatch(ctx, method, endpoint, url, nil, "", start, func(resp *http.Response) (int64, error) {
		if !successful(resp.StatusCode) {
			return 0, upstreamError(method, url, resp)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return int64(len(body)), &TransportError{Method: method, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
		}
		data = body
		return int64(len(body)), nil
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Upload reads filePath fully and POSTs it as a multipart form with a single
// "file" part named after the file. Nothing is sent when the file cannot be read.
func (c *Client) Upload(ctx context.Context, endpoint, filePath string) (any, error) {
	start := time.Now()
	method := http.MethodPost

	content, err := os.ReadFile(filePath)
	if err != nil {
		err = &FileReadError{Method: method, Endpoint: endpoint, Path: filePath, Err: err}
		c.finish(method, endpoint, "", start, 0, 0, err)
		return nil, err
	}

	url, err := c.buildURL(method, endpoint)
	if err != nil {
		c.finish(method, endpoint, "", start, 0, 0, err)
		return nil, err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(filePath))
	if err == nil {
		_, err = part.Write(content)
	}
	if err == nil {
		err = form.Close()
	}
	if err != nil {
		err = &TransportError{Method: method, URL: url, Err: fmt.Errorf("build multipart body: %w", err)}
		c.finish(method, endpoint, url, start, 0, 0, err)
		return nil, err
	}

	c.logger.Debug("uploading file to upstream",
		zap.String("path", filePath),
		zap.Int("file_size", len(content)),
	)

	var value any
	err = c.dispatch(ctx, method, endpoint, url, buf.Bytes(), form.FormDataContentType(), start, func(resp *http.Response) (int64, error) {
		v, n, err := classify(method, url, resp)
		value = v
		return n, err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// buildURL concatenates the current base URL and endpoint without any
// normalization of slashes.
func (c *Client) buildURL(method, endpoint string) (string, error) {
	base, err := c.store.Get()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	return base + endpoint, nil
}

// dispatch sends one request and hands the response to handle, which returns
// the number of body bytes consumed. Every outcome is logged, journaled and counted.
func (c *Client) dispatch(
	ctx context.Context,
	method, endpoint, url string,
	payload []byte,
	contentType string,
	start time.Time,
	handle func(*http.Response) (int64, error),
) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		err = &TransportError{Method: method, URL: url, Err: fmt.Errorf("create request: %w", err)}
		c.finish(method, endpoint, url, start, 0, 0, err)
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("forwarding request to upstream",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("body_size", len(payload)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = &TransportError{Method: method, URL: url, Err: err}
		c.finish(method, endpoint, url, start, 0, 0, err)
		return err
	}
	defer resp.Body.Close()

	n, err := handle(resp)
	c.finish(method, endpoint, url, start, resp.StatusCode, n, err)
	return err
}

// finish logs, journals and counts a completed call. Journal failures are
// logged and never change the call's outcome.
func (c *Client) finish(method, endpoint, url string, start time.Time, status int, n int64, err error) {
	duration := time.Since(start)
	kind := KindOf(err)

	if err != nil {
		c.logger.Warn("upstream call failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("kind", string(kind)),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	} else {
		c.logger.Debug("upstream call succeeded",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Int64("bytes", n),
			zap.Duration("duration", duration),
		)
	}

	c.metrics.RecordRequest(method, string(kind), duration)

	if c.journal == nil {
		return
	}

	entry := journal.NewEntry(method, endpoint, url)
	entry.Status = status
	entry.Kind = string(kind)
	entry.Bytes = n
	entry.Duration = duration
	if err != nil {
		entry.Error = err.Error()
	}

	// The request context may already be cancelled; the journal write is
	// independent of it.
	if err := c.journal.Put(context.Background(), entry); err != nil {
		c.logger.Error("failed to journal call", zap.Error(err))
	}
}

// classify turns a response into a decoded value or a typed error. Status is
// checked before the body is parsed so error bodies are never reported as
// parse failures, and an empty body is checked before parsing so empty
// successes never fail.
func classify(method, url string, resp *http.Response) (any, int64, error) {
	if !successful(resp.StatusCode) {
		return nil, 0, upstreamError(method, url, resp)
	}

	data, err := io.ReadAll(resp.Body)
	n := int64(len(data))
	if err != nil {
		return nil, n, &TransportError{Method: method, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if !utf8.Valid(data) {
		return nil, n, &TransportError{Method: method, URL: url, Err: errors.New("failed to read response: body is not valid UTF-8 text")}
	}

	if len(data) == 0 {
		return map[string]any{}, 0, nil
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, n, &TransportError{Method: method, URL: url, Err: fmt.Errorf("%w: %v: %s", ErrMalformedBody, err, data)}
	}

	return value, n, nil
}

// upstreamError builds the error for a non-2xx response. Reading the body is
// best effort; the error path itself never fails.
func upstreamError(method, url string, resp *http.Response) *UpstreamError {
	detail := UnknownErrorDetail
	if data, err := io.ReadAll(resp.Body); err == nil && len(data) > 0 {
		detail = string(data)
	}

	return &UpstreamError{
		Method: method,
		URL:    url,
		Status: resp.StatusCode,
		Detail: detail,
	}
}

func successful(status int) bool {
	return status >= 200 && status <= 299
}
