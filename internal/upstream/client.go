// Package upstream fetches data from the third-party APIs the aggregator combines.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 3 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 3 * time.Second
	// MaxResponseBytes caps how much of an upstream body is read.
	MaxResponseBytes = 1 << 20

	userAgent = "skyfeed-aggregator/1.0"
)

// NewHTTPClient creates an HTTP client for upstream calls.
// timeout bounds the whole request, including reading the body.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Endpoints holds the URL of every upstream.
type Endpoints struct {
	ISS     string
	SpaceX  string
	CatFact string
	FX      string
}

// Client fetches and decodes upstream responses.
type Client struct {
	http      *http.Client
	endpoints Endpoints
}

// NewClient creates a Client. A nil httpClient uses a 5 second default.
func NewClient(httpClient *http.Client, endpoints Endpoints) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(5 * time.Second)
	}
	return &Client{
		http:      httpClient,
		endpoints: endpoints,
	}
}

// Close releases idle upstream connections.
func (c *Client) Close(ctx context.Context) error {
	c.http.CloseIdleConnections()
	return nil
}

// getJSON issues a GET to url and decodes a 2xx JSON body into dst.
func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, MaxResponseBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, body)
		return fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("decode response from %s: %w", url, ErrTrailingData)
	}
	return nil
}
