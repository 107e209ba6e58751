package odata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// maxResponseBytes bounds a single gateway response
const maxResponseBytes = 32 << 20

// ClientConfig holds connection settings for an OData v2 service
type ClientConfig struct {
	ServiceURL string // e.g. https://gw.example.com/sap/opu/odata/sap/ZSTEP_SRV
	User       string
	Password   string
	Timeout    time.Duration
	HTTPClient *http.Client // optional, mainly for tests
	Logger     *slog.Logger
}

// Client performs JSON reads against an OData v2 service
type Client struct {
	base     *url.URL
	user     string
	password string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a client for the service root in cfg
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ServiceURL == "" {
		return nil, fmt.Errorf("odata service URL cannot be empty")
	}
	base, err := url.Parse(strings.TrimRight(cfg.ServiceURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse odata service URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:     base,
		user:     cfg.User,
		password: cfg.Password,
		http:     httpClient,
		logger:   logger,
	}, nil
}

// Read fetches an entity set and returns its result array. Both the v2
// envelope {"d":{"results":[...]}} and a bare {"results":[...]} are accepted;
// a response without a results array yields an empty result.
func (c *Client) Read(ctx context.Context, entitySet string, params url.Values) (gjson.Result, error) {
	u := *c.base
	u.Path = u.Path + "/" + strings.TrimLeft(entitySet, "/")

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("$format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("GET %s: %w", entitySet, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read %s response: %w", entitySet, err)
	}

	c.logger.Debug("odata read",
		"entity_set", entitySet,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%s: response is not valid JSON", entitySet)
	}

	return Results(gjson.ParseBytes(body)), nil
}

// Results extracts the result collection from an OData payload or a
// navigation property value
func Results(doc gjson.Result) gjson.Result {
	for _, path := range []string{"d.results", "results", "value"} {
		if r := doc.Get(path); r.IsArray() {
			return r
		}
	}
	if doc.IsArray() {
		return doc
	}
	return gjson.Parse("[]")
}

// StatusError is a non-2xx gateway response
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("odata status %d", e.StatusCode)
	}
	return fmt.Sprintf("odata status %d: %s", e.StatusCode, e.Message)
}

// errorMessage pulls the message out of an OData error body
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	doc := gjson.ParseBytes(body)
	for _, path := range []string{"error.message.value", "error.message"} {
		if m := doc.Get(path); m.Type == gjson.String {
			return m.String()
		}
	}
	return ""
}

// Literal quotes s as an OData string literal
func Literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
