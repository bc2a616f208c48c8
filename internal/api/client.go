package api

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

	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 1 << 20

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL string
	Token   string
	Path    string
	// Method used by Update: PATCH or POST.
	Method  string
	Timeout time.Duration
	// HTTPClient overrides the transport (tests use httptest clients).
	HTTPClient *http.Client
}

// Client is the HTTP implementation of Service. Each call is one request
// bounded by the configured timeout; there is no retry loop.
type Client struct {
	endpoint string
	token    string
	method   string
	timeout  time.Duration
	http     *http.Client
}

var _ Service = (*Client)(nil)

// NewClient validates opts and builds a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", opts.BaseURL)
	}
	path := opts.Path
	if path == "" {
		path = "/api/current-user/hotkeys/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	method := strings.ToUpper(opts.Method)
	switch method {
	case "":
		method = http.MethodPatch
	case http.MethodPatch, http.MethodPost:
	default:
		return nil, fmt.Errorf("unsupported update method %q", opts.Method)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		endpoint: base.String() + path,
		token:    opts.Token,
		method:   method,
		timeout:  opts.Timeout,
		http:     hc,
	}, nil
}

// Endpoint returns the full hotkeys URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Fetch reads the stored overrides.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	return c.do(ctx, http.MethodGet, nil)
}

// Update replaces the stored overrides with snap.
func (c *Client) Update(ctx context.Context, snap Snapshot) (*Snapshot, error) {
	if snap.CustomHotkeys == nil {
		snap.CustomHotkeys = hotkeys.Overrides{}
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, &Error{Kind: KindInvalid, Err: err}
	}
	return c.do(ctx, c.method, body)
}

func (c *Client) do(ctx context.Context, method string, body []byte) (*Snapshot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint, rdr)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("hotkeys request failed", "method", method, "url", c.endpoint, "request_id", reqID, "err", err)
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	slog.Info("hotkeys request",
		"method", method,
		"url", c.endpoint,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp.StatusCode, data)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &Error{
			Kind:   KindUnknown,
			Status: resp.StatusCode,
			Reason: "malformed response",
			Err:    err,
		}
	}
	return sanitize(&snap), nil
}

// sanitize canonicalises the server document and drops entries that cannot
// be applied. Dropped entries are logged, never surfaced as failures.
func sanitize(snap *Snapshot) *Snapshot {
	clean, problems := hotkeys.Normalize(snap.CustomHotkeys)
	if len(problems) > 0 {
		slog.Warn("dropping invalid stored hotkeys", "problems", hotkeys.ProblemSummary(problems))
	}
	snap.CustomHotkeys = clean
	return snap
}

// IsTimeout reports whether err came from the request deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
