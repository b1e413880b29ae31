package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by lookup helpers when no row matches.
var ErrNotFound = errors.New("supabase: no matching rows")

// APIError carries the upstream HTTP status and response body of a rejected
// Supabase call.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Body)
}

// Client talks to a Supabase project over its REST surface: PostgREST under
// /rest/v1 and the GoTrue admin API under /auth/v1. All durable state of the
// application lives behind this client.
type Client struct {
	baseURL    string
	serviceKey string
	anonKey    string
	httpc      *http.Client
	log        zerolog.Logger
}

// New constructs a Client. The base URL is the project URL without a trailing
// slash; serviceKey is the service-role secret, anonKey the public credential
// used only for caller-token lookups.
func New(baseURL, serviceKey, anonKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		anonKey:    anonKey,
		httpc:      &http.Client{Timeout: 15 * time.Second},
		log:        log.With().Str("component", "supabase").Logger(),
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	prefer string
	// apikey/bearer default to the service-role key when empty.
	apikey string
	bearer string
	out    any
}

func (c *Client) do(ctx context.Context, r request) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	apikey := r.apikey
	if apikey == "" {
		apikey = c.serviceKey
	}
	bearer := r.bearer
	if bearer == "" {
		bearer = c.serviceKey
	}

	req.Header.Set("apikey", apikey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if r.out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, r.out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// eq builds a PostgREST equality filter value.
func eq(v string) string {
	return "eq." + v
}
