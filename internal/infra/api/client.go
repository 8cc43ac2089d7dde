package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/storefront/pkg/logger"
)

const (
	defaultBaseURL = "http://localhost:8000"
	maxBodyBytes   = 8 << 20
)

// Config points the client at the storefront API.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Observer receives one call per finished request. Status is zero when no
// response arrived.
type Observer interface {
	ObserveRequest(operation string, status int, elapsed time.Duration)
}

// Client talks to the storefront REST API. Every call is issued once; there
// are no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
	log        *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	op       string
	method   string
	path     string
	token    string
	body     any
	form     *form
	fallback string
}

type formFile struct {
	field    string
	filename string
	content  io.Reader
}

type form struct {
	fields [][2]string
	file   *formFile
}

func (f *form) add(key, value string) {
	f.fields = append(f.fields, [2]string{key, value})
}

func (c call) encode() (io.Reader, string, error) {
	switch {
	case c.form != nil:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for _, kv := range c.form.fields {
			if err := mw.WriteField(kv[0], kv[1]); err != nil {
				return nil, "", err
			}
		}
		if f := c.form.file; f != nil && f.content != nil {
			part, err := mw.CreateFormFile(f.field, f.filename)
			if err != nil {
				return nil, "", err
			}
			if _, err := io.Copy(part, f.content); err != nil {
				return nil, "", err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return &buf, mw.FormDataContentType(), nil
	case c.body != nil:
		raw, err := json.Marshal(c.body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(raw), "application/json", nil
	default:
		return nil, "", nil
	}
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	body, contentType, err := cl.encode()
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", cl.op, err)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	logCtx := c.log.WithFields(ctx, map[string]any{
		"operation":  cl.op,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(cl.op, 0, time.Since(start))
		c.log.Error(logCtx, "storefront api request failed", err)
		return fmt.Errorf("%w: %s: %w", ErrTransport, cl.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(cl.op, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %w", ErrTransport, cl.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(cl.op, resp.StatusCode, raw, cl.fallback)
		c.log.Warn(c.log.WithField(logCtx, "status", resp.StatusCode), "storefront api rejected request")
		return apiErr
	}
	c.log.Debug(c.log.WithField(logCtx, "status", resp.StatusCode), "storefront api request done")

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, cl.op, err)
	}
	if env, ok := out.(enveloped); ok {
		if e := env.status(); e.rejected() {
			return &Error{Op: cl.op, Status: resp.StatusCode, Message: firstNonEmpty(e.Message, cl.fallback)}
		}
	}
	return nil
}

func (c *Client) observe(op string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(op, status, elapsed)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
