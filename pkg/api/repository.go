// Package api is the client of the remote REST API. Every repository method
// returns a Result instead of surfacing transport errors; raw errors never
// cross this boundary.
package api

import (
	"context"

	"vpn-client/pkg/model"
	"vpn-client/pkg/result"
)

// CacheStrategy controls how GetPlans sources its data.
type CacheStrategy int

const (
	// CacheFirst serves cached plans when available and falls back to the
	// network, refreshing the cache.
	CacheFirst CacheStrategy = iota
	// NetworkOnly always hits the API and refreshes the cache.
	NetworkOnly
)

// Repository abstracts the billing side of the remote API.
type Repository interface {
	GetPlans(ctx context.Context, strategy CacheStrategy) result.Result[[]model.Plan]
	// GetActiveSubscription returns nil when the user has no subscription.
	GetActiveSubscription(ctx context.Context) result.Result[*model.Subscription]
	Subscribe(ctx context.Context, planID, paymentMethod string) result.Result[model.Subscription]
	CancelSubscription(ctx context.Context, id string) result.Result[struct{}]
	RestorePurchases(ctx context.Context) result.Result[struct{}]
	GetTrialStatus(ctx context.Context) result.Result[model.TrialStatus]
	ActivateTrial(ctx context.Context) result.Result[model.Subscription]
}

// PlanCache is the optional local cache backing CacheFirst reads.
type PlanCache interface {
	CachedPlans(ctx context.Context) ([]model.Plan, error)
	StorePlans(ctx context.Context, plans []model.Plan) error
}

// AccountRepository abstracts the account-security side of the remote API.
type AccountRepository interface {
	GetAntiphishingCode(ctx context.Context) result.Result[model.AntiphishingCode]
	SetAntiphishingCode(ctx context.Context, code string) result.Result[struct{}]
	DeleteAntiphishingCode(ctx context.Context) result.Result[struct{}]
	ChangePassword(ctx context.Context, current, next string) result.Result[struct{}]
	SetupTwoFactor(ctx context.Context) result.Result[model.TwoFactorSetup]
	VerifyTwoFactor(ctx context.Context, code string) result.Result[struct{}]
	DisableTwoFactor(ctx context.Context, code string) result.Result[struct{}]
	GetTelegramLink(ctx context.Context) result.Result[model.TelegramLink]
	UnlinkTelegram(ctx context.Context) result.Result[struct{}]
	DeleteAccount(ctx context.Context, password string) result.Result[struct{}]
}
