package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

const separator = "--------------------------------------------------"

// PrintBanner describes the request about to be sent. The API key is masked.
func PrintBanner(w io.Writer, c *Client) {
	fmt.Fprintln(w, "Calling aggregator service...")
	fmt.Fprintf(w, "URL: %s\n", c.URL())
	fmt.Fprintf(w, "Headers: %s\n", formatHeaders(c.Headers()))
	fmt.Fprintln(w, separator)
}

// Report prints the outcome of an aggregate call and returns the process exit code.
func Report(w io.Writer, url string, resp *Response, err error) int {
	switch {
	case errors.Is(err, ErrTimeout):
		fmt.Fprintln(w, "ERROR - Request timed out")
		return 1
	case errors.Is(err, ErrConnection):
		fmt.Fprintln(w, "ERROR - Cannot connect to aggregator service")
		fmt.Fprintf(w, "Make sure the aggregator server is running at %s\n", url)
		fmt.Fprintln(w, "Run: go run ./cmd/api")
		return 1
	case err != nil:
		fmt.Fprintf(w, "ERROR - Unexpected error: %v\n", err)
		return 1
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(w, "ERROR - Status Code: %d\n", resp.StatusCode)
		fmt.Fprintf(w, "Response: %s\n", resp.Body)
		return 1
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Body, "", "  "); err != nil {
		fmt.Fprintf(w, "ERROR - Unexpected error: invalid JSON response: %v\n", err)
		return 1
	}

	fmt.Fprintln(w, "SUCCESS - Aggregated data received:")
	fmt.Fprintln(w, pretty.String())
	return 0
}

func formatHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := h.Get(k)
		if strings.EqualFold(k, "X-API-Key") {
			v = mask(v)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return strings.Join(parts, ", ")
}

func mask(secret string) string {
	if len(secret) <= 3 {
		return "***"
	}
	return secret[:3] + strings.Repeat("*", len(secret)-3)
}
