// Package facecompare calls the external face-comparison service. The
// comparison algorithm itself is a black box behind one HTTP endpoint;
// this client only translates its verdict and failure modes.
package facecompare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrBoundary wraps every failure of the comparison boundary: network
// errors, timeouts, non-2xx responses, and unparseable verdicts. The
// coordinator treats any of these as grounds to fail the record.
var ErrBoundary = errors.New("face comparison boundary failure")

const defaultTimeout = 5 * time.Second

type Client struct {
	endpoint   string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*Client)

// WithTimeout bounds each comparison call. Zero or negative keeps the
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(endpoint, token string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		token:      token,
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type compareRequest struct {
	ImageURL string `json:"image_url"`
	ImageID  string `json:"image_id"`
}

type compareResponse struct {
	Verdict string `json:"verdict"`
}

// Compare submits one comparison and returns whether the face matched
// the reference. Any transport or protocol failure is reported as an
// error wrapping ErrBoundary.
func (c *Client) Compare(ctx context.Context, imageURL, imageID string) (bool, error) {
	body, err := json.Marshal(compareRequest{ImageURL: imageURL, ImageID: imageID})
	if err != nil {
		return false, fmt.Errorf("%w: encode request: %v", ErrBoundary, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("%w: build request: %v", ErrBoundary, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBoundary, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: status %d", ErrBoundary, resp.StatusCode)
	}

	var cr compareResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return false, fmt.Errorf("%w: decode response: %v", ErrBoundary, err)
	}

	switch cr.Verdict {
	case "match":
		return true, nil
	case "no-match":
		return false, nil
	default:
		return false, fmt.Errorf("%w: unknown verdict %q", ErrBoundary, cr.Verdict)
	}
}
