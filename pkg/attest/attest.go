// Package attest requests device-attestation tokens. Attestation is
// best-effort telemetry: callers fire it without awaiting and never fail the
// surrounding operation on an attestation error.
package attest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"vpn-client/pkg/model"
)

// Triggers describing why a token was requested.
const (
	TriggerPurchase = "purchase"
	TriggerLogin    = "login"
)

// Service generates attestation tokens.
type Service interface {
	GenerateToken(ctx context.Context, trigger, challenge string) (model.AttestationResult, error)
}

// Client implements Service against the backend attestation endpoint.
// Desktop platforms have no hardware attestation, so the backend is told the
// device does not support it and answers with a software-only token.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds an attestation client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) GenerateToken(ctx context.Context, trigger, challenge string) (model.AttestationResult, error) {
	req := struct {
		Trigger   string `json:"trigger"`
		Challenge string `json:"challenge,omitempty"`
		Platform  string `json:"platform"`
	}{Trigger: trigger, Challenge: challenge, Platform: runtime.GOOS}
	body, err := json.Marshal(req)
	if err != nil {
		return errorResult(), err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/attest", bytes.NewReader(body))
	if err != nil {
		return errorResult(), err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errorResult(), err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errorResult(), fmt.Errorf("attestation endpoint returned %s", resp.Status)
	}
	var out model.AttestationResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return errorResult(), fmt.Errorf("malformed attestation response: %w", err)
	}
	if out.Platform == "" {
		out.Platform = runtime.GOOS
	}
	return out, nil
}

func errorResult() model.AttestationResult {
	return model.AttestationResult{Status: "error", Platform: runtime.GOOS}
}
