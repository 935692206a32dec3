// Package client calls the aggregator's aggregate endpoint.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"time"
)

// Error classes reported by Client.Aggregate.
var (
	ErrConnection = errors.New("cannot connect to aggregator service")
	ErrTimeout    = errors.New("request timed out")
)

const maxBodyBytes = 4 << 20

// Response is the raw reply of the aggregate endpoint.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client issues requests to the aggregator.
type Client struct {
	http   *http.Client
	url    string
	apiKey string
}

// New creates a Client whose requests are bounded by timeout.
func New(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		url:    url,
		apiKey: apiKey,
	}
}

// URL returns the endpoint the client calls.
func (c *Client) URL() string {
	return c.url
}

// Headers returns the headers sent with each request.
func (c *Client) Headers() http.Header {
	h := http.Header{}
	h.Set("X-API-Key", c.apiKey)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

// Aggregate performs one GET against the aggregate endpoint.
// Any status code is returned as a Response; transport failures are
// wrapped in ErrTimeout or ErrConnection when they can be classified.
func (c *Client) Aggregate(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = c.Headers()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// classify maps a transport error onto ErrTimeout or ErrConnection.
// Timeouts are checked first: a dial that times out is reported as a timeout.
func classify(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if isConnection(err) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnection(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && errors.Is(urlErr.Err, io.EOF) {
		return true
	}
	return false
}
