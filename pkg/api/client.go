package api

import (
	"context"
	"net/http"

	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/model"
	"vpn-client/pkg/result"
)

// Client implements Repository and AccountRepository over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	cache   PlanCache
	log     *logbuf.Buffer
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches the bearer-token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithPlanCache attaches the local plan cache used by CacheFirst reads.
func WithPlanCache(pc PlanCache) Option {
	return func(c *Client) { c.cache = pc }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds an API client for the given base URL.
func NewClient(baseURL string, log *logbuf.Buffer, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetPlans(ctx context.Context, strategy CacheStrategy) result.Result[[]model.Plan] {
	if strategy == CacheFirst && c.cache != nil {
		if plans, err := c.cache.CachedPlans(ctx); err == nil && len(plans) > 0 {
			return result.Ok(plans)
		}
	}
	var resp struct {
		Plans []model.Plan `json:"plans"`
	}
	if f := c.doJSON(ctx, http.MethodGet, "/api/v1/plans", nil, &resp); f != nil {
		return result.Fail[[]model.Plan](*f)
	}
	if c.cache != nil {
		if err := c.cache.StorePlans(ctx, resp.Plans); err != nil {
			c.log.Warning("plan cache refresh failed", map[string]any{"error": err.Error()})
		}
	}
	return result.Ok(resp.Plans)
}

func (c *Client) GetActiveSubscription(ctx context.Context) result.Result[*model.Subscription] {
	var resp struct {
		Subscription *model.Subscription `json:"subscription"`
	}
	if f := c.doJSON(ctx, http.MethodGet, "/api/v1/subscription", nil, &resp); f != nil {
		return result.Fail[*model.Subscription](*f)
	}
	return result.Ok(resp.Subscription)
}

func (c *Client) Subscribe(ctx context.Context, planID, paymentMethod string) result.Result[model.Subscription] {
	if planID == "" {
		return result.Fail[model.Subscription](result.ValidationFailure("plan id is required"))
	}
	req := struct {
		PlanID        string `json:"planId"`
		PaymentMethod string `json:"paymentMethod,omitempty"`
	}{PlanID: planID, PaymentMethod: paymentMethod}
	var sub model.Subscription
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/subscription", req, &sub); f != nil {
		return result.Fail[model.Subscription](*f)
	}
	return result.Ok(sub)
}

func (c *Client) CancelSubscription(ctx context.Context, id string) result.Result[struct{}] {
	if id == "" {
		return result.Fail[struct{}](result.ValidationFailure("subscription id is required"))
	}
	if f := c.doJSON(ctx, http.MethodDelete, "/api/v1/subscription/"+id, nil, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) RestorePurchases(ctx context.Context) result.Result[struct{}] {
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/subscription/restore", nil, nil); f != nil {
		return result.Fail[struct{}](*f)
	}
	return result.Ok(struct{}{})
}

func (c *Client) GetTrialStatus(ctx context.Context) result.Result[model.TrialStatus] {
	var ts model.TrialStatus
	if f := c.doJSON(ctx, http.MethodGet, "/api/v1/trial", nil, &ts); f != nil {
		return result.Fail[model.TrialStatus](*f)
	}
	return result.Ok(ts)
}

func (c *Client) ActivateTrial(ctx context.Context) result.Result[model.Subscription] {
	var sub model.Subscription
	if f := c.doJSON(ctx, http.MethodPost, "/api/v1/trial/activate", nil, &sub); f != nil {
		return result.Fail[model.Subscription](*f)
	}
	return result.Ok(sub)
}
