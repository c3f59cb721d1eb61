// Package apiclient talks to the console backend's REST API.
package apiclient

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

	"github.com/kazz187/agentconsole/internal/session"
	"github.com/kazz187/agentconsole/pkg/cerr"
	"github.com/kazz187/agentconsole/pkg/clog"
)

// Envelope is the backend's response wrapper. Only the fields relevant to
// the endpoint are populated.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Count      *int            `json:"count,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Token      string          `json:"token,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is still
// wrapped with request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		session: sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Transport = clog.NewTransport(c.http.Transport)
	return c
}

func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one request. Any failure comes back as a *cerr.Error whose Msg is
// the backend's message when it sent one.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, cerr.NewError(cerr.InvalidArgument, "", fmt.Errorf("failed to encode request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "", fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.session.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cerr.FromTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cerr.FromTransportError(err)
	}

	var env Envelope
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return nil, cerr.NewError(
			cerr.CodeFromHTTPStatus(resp.StatusCode),
			msg,
			fmt.Errorf("%s %s: %s", method, path, resp.Status),
		)
	}
	if decodeErr != nil {
		return nil, cerr.NewError(cerr.Internal, "", fmt.Errorf("failed to decode response of %s %s: %w", method, path, decodeErr))
	}
	return &env, nil
}

// Decode unmarshals the envelope's data field into T. A missing data field
// yields the zero value.
func Decode[T any](env *Envelope) (T, error) {
	var v T
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, cerr.NewError(cerr.Internal, "", fmt.Errorf("failed to decode data: %w", err))
	}
	return v, nil
}

// PathID escapes an id for use as a path segment.
func PathID(id string) string {
	return url.PathEscape(id)
}

// ErrEmptyID rejects calls that would address the collection instead of an entity.
var ErrEmptyID = cerr.NewError(cerr.InvalidArgument, "id is required", nil)
