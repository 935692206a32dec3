package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid or missing API key"}`))
			return
		}
		_, _ = w.Write([]byte(`{"iss":{"lat":1,"lon":2,"timestamp":3},"spacex":{"name":"Unknown","date_utc":"","success":false},"cat_fact":"meow","eur_usd":1.1}`))
	}))
	t.Cleanup(srv.Close)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadURL := "http://" + ln.Addr().String() + "/v1/aggregate"
	require.NoError(t, ln.Close())

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "success",
			args:     []string{"--url", srv.URL + "/v1/aggregate"},
			wantCode: 0,
			wantOut:  "SUCCESS - Aggregated data received:",
		},
		{
			name:     "bad key",
			args:     []string{"--url", srv.URL + "/v1/aggregate", "--api-key", "nope"},
			wantCode: 1,
			wantOut:  "ERROR - Status Code: 401",
		},
		{
			name:     "unreachable server",
			args:     []string{"--url", deadURL},
			wantCode: 1,
			wantOut:  "ERROR - Cannot connect to aggregator service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := Execute(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stdout.String(), tt.wantOut)
			assert.Empty(t, stderr.String())
			assert.False(t, strings.Contains(stdout.String(), "panic"), "output must not contain a stack trace")
		})
	}
}

func TestExecute_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"positional argument", []string{"extra"}},
		{"non-positive timeout", []string{"--timeout", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := Execute(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, 2, code)
			assert.Contains(t, stderr.String(), "Error:")
		})
	}
}

func TestNewRootCommand_EnvDefaults(t *testing.T) {
	t.Setenv("AGGREGATOR_URL", "http://example.test/v1/aggregate")
	t.Setenv("CLIENT_TIMEOUT", "7s")

	var stdout, stderr bytes.Buffer
	// --help prints usage with the env-derived defaults and exits cleanly.
	code := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "http://example.test/v1/aggregate")
	assert.Contains(t, stdout.String(), "7s")
}
