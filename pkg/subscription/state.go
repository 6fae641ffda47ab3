package subscription

import (
	"vpn-client/pkg/model"
	"vpn-client/pkg/result"
)

// PurchaseState is the purchase flow state machine. Transitions are strictly
// idle -> loading -> {success, error} -> idle; loading is never skipped.
type PurchaseState string

const (
	PurchaseIdle    PurchaseState = "idle"
	PurchaseLoading PurchaseState = "loading"
	PurchaseSuccess PurchaseState = "success"
	PurchaseError   PurchaseState = "error"
)

// State is the subscription snapshot. It is replaced wholesale on every
// mutating operation; fields are never mutated in place.
type State struct {
	AvailablePlans      []model.Plan
	CurrentSubscription *model.Subscription
	PurchaseState       PurchaseState
	PurchaseError       string
	TrialEligibility    bool

	// LoadError is set when the initial load failed; the UI renders it as a
	// full-screen error with retry.
	LoadError *result.FailureInfo
	Loaded    bool
}

// clone returns a copy safe to hand to listeners.
func (s State) clone() State {
	out := s
	out.AvailablePlans = append([]model.Plan(nil), s.AvailablePlans...)
	if s.CurrentSubscription != nil {
		sub := *s.CurrentSubscription
		out.CurrentSubscription = &sub
	}
	if s.LoadError != nil {
		f := *s.LoadError
		out.LoadError = &f
	}
	return out
}

// trialEligible implements the eligibility invariant: true only when no
// subscription is active and at least one plan is a trial plan.
func trialEligible(sub *model.Subscription, plans []model.Plan) bool {
	if sub != nil {
		return false
	}
	_, ok := model.FirstTrial(plans)
	return ok
}
