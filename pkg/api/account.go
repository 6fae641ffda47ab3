package api

import (
	"context"
	"net/http"

	"vpn-client/pkg/model"
	"vpn-client/pkg/result"
)

// Account-security endpoints. All are plain request/response pairs; client-side
// validation failures never reach the wire.

func (c *Client) GetAntiphishingCode(ctx context.Context) result.Result[model.AntiphishingCode] {
	var code model.AntiphishingCode
	if f := c.doJSON(ctx, http.MethodGet, "/api/v1/account/antiphishing", nil, &code); f != nil {
		return result.Fail[model.AntiphishingCode](*f)
	}
	return result.Ok(code)
}

func (c *Client) SetAntiphishingCode(ctx context.Context, code string) result.Result[struct{}] {
	if len(code) < 4 || len(code) > 32 {
		return result.Fail[struct{}](result.ValidationFailure("antiphishing code must be 4-32 characters"))
	}
	req := struct {
		Code string `json:"code"`
	}{Code: code}
	if f := c.doJSON(ctx, http.MethodPut, "/api/v1/account/antiphishing", req, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) DeleteAntiphishingCode(ctx context.Context) result.Result[struct{}] {
	if f := c.doJSON(ctx, http.MethodDelete, "/api/v1/account/antiphishing", nil, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) result.Result[struct{}] {
	if len(next) < 8 {
		return result.Fail[struct{}](result.ValidationFailure("new password must be at least 8 characters"))
	}
	req := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{CurrentPassword: current, NewPassword: next}
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/account/password", req, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) SetupTwoFactor(ctx context.Context) result.Result[model.TwoFactorSetup] {
	var setup model.TwoFactorSetup
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/account/2fa/setup", nil, &setup); f != nil {
		return result.Fail[model.TwoFactorSetup](*f)
	}
	return result.Ok(setup)
}

func (c *Client) VerifyTwoFactor(ctx context.Context, code string) result.Result[struct{}] {
	if len(code) != 6 {
		return result.Fail[struct{}](result.ValidationFailure("verification code must be 6 digits"))
	}
	req := struct {
		Code string `json:"code"`
	}{Code: code}
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/account/2fa/verify", req, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) DisableTwoFactor(ctx context.Context, code string) result.Result[struct{}] {
	if len(code) != 6 {
		return result.Fail[struct{}](result.ValidationFailure("verification code must be 6 digits"))
	}
	req := struct {
		Code string `json:"code"`
	}{Code: code}
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/account/2fa/disable", req, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) GetTelegramLink(ctx context.Context) result.Result[model.TelegramLink] {
	var link model.TelegramLink
	if f := c.doJSON(ctx, http.MethodGet, "/api/v1/account/telegram", nil, &link); f != nil {
		return result.Fail[model.TelegramLink](*f)
	}
	return result.Ok(link)
}

func (c *Client) UnlinkTelegram(ctx context.Context) result.Result[struct{}] {
	if f := c.doJSON(ctx, http.MethodDelete, "/api/v1/account/telegram", nil, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) DeleteAccount(ctx context.Context, password string) result.Result[struct{}] {
	if password == "" {
		return result.Fail[struct{}](result.ValidationFailure("password confirmation is required"))
	}
	req := struct {
		Password string `json:"password"`
	}{Password: password}
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/account/delete", req, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}
