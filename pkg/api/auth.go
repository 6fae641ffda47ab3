package api

import (
	"context"
	"net/http"

	"vpn-client/pkg/result"
)

// LoginResponse carries the session token issued on successful sign-in.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn,omitempty"` // seconds
}

// Login exchanges credentials (plus an optional TOTP code) for a session token.
func (c *Client) Login(ctx context.Context, email, password, totpCode string) result.Result[LoginResponse] {
	if email == "" || password == "" {
		return result.Fail[LoginResponse](result.ValidationFailure("email and password are required"))
	}
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TOTPCode string `json:"totpCode,omitempty"`
	}{Email: email, Password: password, TOTPCode: totpCode}
	var resp LoginResponse
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); f != nil {
		return result.Fail[LoginResponse](*f)
	}
	return result.Ok(resp)
}

// Logout invalidates the current session server-side. Best effort; local
// session teardown happens regardless of the outcome.
func (c *Client) Logout(ctx context.Context) result.Result[struct{}] {
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}
