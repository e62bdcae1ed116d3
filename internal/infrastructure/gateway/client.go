// Package gateway is the only way the client talks to the feedback backend.
// Every request goes through a transport that attaches the persisted
// credential, and every response is decoded and checked at this boundary.
package gateway

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

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/feedbackhub/feedback-client/internal/core/domain"
	"github.com/feedbackhub/feedback-client/internal/core/ports"
)

const maxBodyBytes = 4 << 20

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	// Timeout bounds a whole request. Zero means no client-side timeout.
	Timeout time.Duration
	// Transport overrides http.DefaultTransport, mostly for tests.
	Transport http.RoundTripper
}

// Client is an authenticated HTTP client for the feedback backend.
type Client struct {
	base     *url.URL
	http     *http.Client
	auth     *bearerTransport
	log      zerolog.Logger
	validate *validator.Validate
}

// New builds a client. A missing base URL is domain.ErrMissingBaseURL; an
// unparseable one is an error too. Neither falls back to a default.
func New(cfg Config, tokens ports.TokenStore, log zerolog.Logger) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, domain.ErrMissingBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base address: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("backend base address %q must be an absolute http(s) URL", raw)
	}

	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	auth := &bearerTransport{base: rt, tokens: tokens}
	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: auth,
		},
		auth:     auth,
		log:      log.With().Str("component", "gateway").Logger(),
		validate: validator.New(),
	}, nil
}

// OnReject registers fn to run whenever the backend answers 401 to a request
// that carried a credential. Call it before the client is shared.
func (c *Client) OnReject(fn RejectFunc) {
	c.auth.onReject = fn
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) resolve(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

// Do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). Non-2xx responses become *APIError.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status: resp.StatusCode,
			Detail: parseDetail(data),
			Method: method,
			Path:   path,
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s %s returned an empty body", domain.ErrMalformedResponse, method, path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrMalformedResponse, method, path, err)
	}
	return nil
}

// check validates a decoded struct against its validate tags.
func (c *Client) check(what string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, what, err)
	}
	return nil
}

func checkEach[T any](c *Client, what string, list []T) error {
	for i := range list {
		if err := c.check(fmt.Sprintf("%s[%d]", what, i), &list[i]); err != nil {
			return err
		}
	}
	return nil
}

// Ping reports whether the backend answers HTTP at all. Any status counts as
// reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("/"), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
