package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"linkup/middleware"
	"linkup/securestore"
)

// Error is a non-2xx response from the backend
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// IsStatus reports whether err is an *Error with the given status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the LinkUp REST backend
type Client struct {
	baseURL   string
	wsBaseURL string
	http      *http.Client
	log       *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTransport replaces the transport below the bearer token layer
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport.(*middleware.BearerAuth).Next = rt
	}
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client for baseURL authenticating with the token in store
func NewClient(baseURL, wsBaseURL string, store securestore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		wsBaseURL: strings.TrimRight(wsBaseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: &middleware.BearerAuth{Store: store},
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the REST base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChatSocketURL returns the websocket URL of a user's chat stream
func (c *Client) ChatSocketURL(username, accessToken string) string {
	return fmt.Sprintf("%s/ws/chat/%s/?token=%s", c.wsBaseURL, url.PathEscape(username), url.QueryEscape(accessToken))
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// form is a multipart body under construction
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) error {
	return f.w.WriteField(name, value)
}

func (f *form) file(name, filename string, r io.Reader) error {
	part, err := f.w.CreateFormFile(name, filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}

func (c *Client) doForm(ctx context.Context, method, path string, f *form, out any) error {
	if err := f.w.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &f.buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", f.w.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api_request_failed", zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api_request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Detail: errorDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
