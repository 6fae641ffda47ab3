package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"vpn-client/pkg/result"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// BuildHTTPClient constructs the shared HTTP client, optionally pinning a CA.
func BuildHTTPClient(caFile string, timeout time.Duration, insecure bool) (*http.Client, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: insecure} //nolint:gosec
	if caFile != "" {
		caCertPool := x509.NewCertPool()
		caData, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		caCertPool.AppendCertsFromPEM(caData)
		tlsConfig.RootCAs = caCertPool
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}, nil
}

// apiError is the error envelope the backend returns on non-2xx responses.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doJSON performs one API round trip. A nil payload sends no body; a nil out
// skips response decoding. The returned FailureInfo classifies what went
// wrong; it is nil on success.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) *result.FailureInfo {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			f := result.ValidationFailure("encode request: " + err.Error())
			return &f
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		f := result.NetworkFailure("build request: " + err.Error())
		return &f
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			f := result.AuthFailure("session expired, please sign in again")
			return &f
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		f := result.NetworkFailure("no connection to server")
		return &f
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		f := result.AuthFailure(errorMessage(resp, "invalid credentials"))
		return &f
	}
	if resp.StatusCode >= 300 {
		f := result.ServerFailure(errorMessage(resp, fmt.Sprintf("server returned %s", resp.Status)))
		return &f
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			f := result.ServerFailure("malformed server response")
			return &f
		}
	}
	return nil
}

func errorMessage(resp *http.Response, fallback string) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e apiError
	if err := json.Unmarshal(data, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if s := strings.TrimSpace(string(data)); s != "" && len(s) < 200 {
		return s
	}
	return fallback
}
