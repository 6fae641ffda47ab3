package model

import "time"

// SubscriptionStatus captures the lifecycle of a subscription.
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// IsValid reports whether the status is one of the known lifecycle values.
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionPending, SubscriptionActive, SubscriptionExpired, SubscriptionCanceled:
		return true
	}
	return false
}

// Subscription is the user's current subscription as reported by the API.
type Subscription struct {
	ID            string             `json:"id"`
	PlanID        string             `json:"planId"`
	Status        SubscriptionStatus `json:"status"`
	IsTrial       bool               `json:"isTrial,omitempty"`
	PaymentMethod string             `json:"paymentMethod,omitempty"`
	StartsAt      time.Time          `json:"startsAt"`
	ExpiresAt     time.Time          `json:"expiresAt"`
	AutoRenew     bool               `json:"autoRenew"`
}

// TrialStatus mirrors the trial eligibility response of the billing API.
type TrialStatus struct {
	IsEligible    bool `json:"is_eligible"`
	DaysRemaining int  `json:"days_remaining"`
	TrialUsed     bool `json:"trial_used"`
}
