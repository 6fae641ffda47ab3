// Package subscription holds the subscription state notifier: an immutable
// snapshot plus the mutating operations the frontend dispatches into.
package subscription

import (
	"context"
	"errors"
	"sync"
	"time"

	"vpn-client/pkg/api"
	"vpn-client/pkg/attest"
	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/model"
	"vpn-client/pkg/result"
)

// noTrialPlanMsg is the fixed message when ActivateTrial finds no trial plan.
const noTrialPlanMsg = "No trial plan available."

// attestTimeout bounds the fire-and-forget attestation request.
const attestTimeout = 15 * time.Second

// PurchasePlatform is the external app-store purchase layer. Restore replays
// past purchases with the store before the subscription is re-fetched.
type PurchasePlatform interface {
	Restore(ctx context.Context) error
}

// Listener observes snapshot replacements.
type Listener func(State)

// Notifier owns the subscription snapshot. All writers replace the snapshot
// wholesale under the mutex; listeners observe every transition in order.
type Notifier struct {
	mu        sync.Mutex
	state     State
	listeners []Listener

	// inFlight serializes purchase-path operations: an overlapping call is
	// dropped the same way a second diagnostics run is.
	inFlight bool

	repo     api.Repository
	attestor attest.Service
	platform PurchasePlatform
	log      *logbuf.Buffer
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAttestor attaches the best-effort device attestation service.
func WithAttestor(a attest.Service) Option {
	return func(n *Notifier) { n.attestor = a }
}

// WithPurchasePlatform attaches the external store platform used by restore.
func WithPurchasePlatform(p PurchasePlatform) Option {
	return func(n *Notifier) { n.platform = p }
}

// NewNotifier builds a notifier over the given repository.
func NewNotifier(repo api.Repository, log *logbuf.Buffer, opts ...Option) *Notifier {
	n := &Notifier{
		repo:  repo,
		log:   log,
		state: State{PurchaseState: PurchaseIdle},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers a listener for snapshot replacements.
func (n *Notifier) Subscribe(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// State returns a copy of the current snapshot.
func (n *Notifier) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.clone()
}

// setState replaces the snapshot and notifies listeners with a copy.
func (n *Notifier) setState(mutate func(*State)) {
	n.mu.Lock()
	next := n.state.clone()
	mutate(&next)
	n.state = next
	listeners := append([]Listener(nil), n.listeners...)
	snapshot := next.clone()
	n.mu.Unlock()
	for _, l := range listeners {
		l(snapshot)
	}
}

// Load fetches plans and the active subscription concurrently and builds the
// initial snapshot. Any failure puts the notifier into the load-error state.
func (n *Notifier) Load(ctx context.Context) {
	var (
		wg       sync.WaitGroup
		plansRes = make([]model.Plan, 0)
		plansErr error
		sub      *model.Subscription
		subErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if plans, err := n.repo.GetPlans(ctx, api.CacheFirst).Unpack(); err != nil {
			plansErr = err
		} else {
			plansRes = plans
		}
	}()
	go func() {
		defer wg.Done()
		if s, err := n.repo.GetActiveSubscription(ctx).Unpack(); err != nil {
			subErr = err
		} else {
			sub = s
		}
	}()
	wg.Wait()

	if plansErr != nil || subErr != nil {
		err := plansErr
		if err == nil {
			err = subErr
		}
		n.log.Error("subscription load failed", map[string]any{"error": err.Error()})
		n.setState(func(s *State) {
			f := failureOf(err)
			s.LoadError = &f
			s.Loaded = false
		})
		return
	}
	n.setState(func(s *State) {
		s.AvailablePlans = plansRes
		s.CurrentSubscription = sub
		s.TrialEligibility = trialEligible(sub, plansRes)
		s.LoadError = nil
		s.Loaded = true
	})
}

// Purchase runs the purchase flow for the given plan. An overlapping call
// while a purchase-path operation is in flight is silently dropped.
func (n *Notifier) Purchase(ctx context.Context, plan model.Plan) {
	if !n.beginPurchase() {
		n.log.Debug("purchase already in flight, dropping call", map[string]any{"planId": plan.ID})
		return
	}
	defer n.endPurchase()

	n.setState(func(s *State) {
		s.PurchaseState = PurchaseLoading
		s.PurchaseError = ""
	})

	// Best-effort attestation; the result is telemetry, never a gate.
	if n.attestor != nil {
		go func() {
			actx, cancel := context.WithTimeout(context.Background(), attestTimeout)
			defer cancel()
			res, err := n.attestor.GenerateToken(actx, attest.TriggerPurchase, "")
			if err != nil {
				n.log.Warning("attestation failed", map[string]any{"error": err.Error()})
				return
			}
			n.log.Debug("attestation completed", map[string]any{"status": res.Status, "platform": res.Platform})
		}()
	}

	sub, err := n.repo.Subscribe(ctx, plan.ID, plan.StoreProductID).Unpack()
	if err != nil {
		n.log.Error("purchase failed", map[string]any{"planId": plan.ID, "error": err.Error()})
		n.setState(func(s *State) {
			s.PurchaseState = PurchaseError
			s.PurchaseError = err.Error()
		})
		return
	}
	n.log.Info("purchase succeeded", map[string]any{"planId": plan.ID, "subscriptionId": sub.ID})
	n.setState(func(s *State) {
		s.CurrentSubscription = &sub
		s.PurchaseState = PurchaseSuccess
		s.PurchaseError = ""
		s.TrialEligibility = false
	})
}

// RestorePurchases replays store purchases and then unconditionally reloads
// the subscription from the repository.
func (n *Notifier) RestorePurchases(ctx context.Context) {
	if !n.beginPurchase() {
		n.log.Debug("restore already in flight, dropping call", nil)
		return
	}
	defer n.endPurchase()

	n.setState(func(s *State) {
		s.PurchaseState = PurchaseLoading
		s.PurchaseError = ""
	})

	var failMsg string
	if n.platform != nil {
		if err := n.platform.Restore(ctx); err != nil {
			failMsg = err.Error()
			n.log.Warning("store restore failed", map[string]any{"error": err.Error()})
		}
	}
	if failMsg == "" {
		if _, err := n.repo.RestorePurchases(ctx).Unpack(); err != nil {
			failMsg = err.Error()
		}
	}

	sub, subErr := n.repo.GetActiveSubscription(ctx).Unpack()
	n.setState(func(s *State) {
		if subErr == nil {
			s.CurrentSubscription = sub
			s.TrialEligibility = trialEligible(sub, s.AvailablePlans)
		}
		switch {
		case failMsg != "":
			s.PurchaseState = PurchaseError
			s.PurchaseError = failMsg
		case subErr != nil:
			s.PurchaseState = PurchaseError
			s.PurchaseError = subErr.Error()
		default:
			s.PurchaseState = PurchaseSuccess
			s.PurchaseError = ""
		}
	})
}

// ActivateTrial purchases the first trial plan. Without one, the state goes
// straight to error with a fixed message and the repository is not called.
func (n *Notifier) ActivateTrial(ctx context.Context) {
	n.mu.Lock()
	plan, ok := model.FirstTrial(n.state.AvailablePlans)
	n.mu.Unlock()
	if !ok {
		n.setState(func(s *State) {
			s.PurchaseState = PurchaseError
			s.PurchaseError = noTrialPlanMsg
		})
		return
	}
	n.Purchase(ctx, plan)
}

// ClearPurchaseState resets the purchase flow to idle. Synchronous, no I/O.
func (n *Notifier) ClearPurchaseState() {
	n.setState(func(s *State) {
		s.PurchaseState = PurchaseIdle
		s.PurchaseError = ""
	})
}

// LoadPlans refreshes the plan list without touching the rest of the snapshot.
func (n *Notifier) LoadPlans(ctx context.Context) {
	plans, err := n.repo.GetPlans(ctx, api.NetworkOnly).Unpack()
	if err != nil {
		n.log.Error("plan refresh failed", map[string]any{"error": err.Error()})
		return
	}
	n.setState(func(s *State) {
		s.AvailablePlans = plans
		s.TrialEligibility = trialEligible(s.CurrentSubscription, plans)
	})
}

// LoadSubscription refreshes the active subscription without touching the
// plan list.
func (n *Notifier) LoadSubscription(ctx context.Context) {
	sub, err := n.repo.GetActiveSubscription(ctx).Unpack()
	if err != nil {
		n.log.Error("subscription refresh failed", map[string]any{"error": err.Error()})
		return
	}
	n.setState(func(s *State) {
		s.CurrentSubscription = sub
		s.TrialEligibility = trialEligible(sub, s.AvailablePlans)
	})
}

// CancelSubscription cancels the given subscription and refreshes. A failure
// leaves the prior snapshot intact; the message is surfaced via PurchaseError.
func (n *Notifier) CancelSubscription(ctx context.Context, id string) {
	if _, err := n.repo.CancelSubscription(ctx, id).Unpack(); err != nil {
		n.log.Error("cancel failed", map[string]any{"subscriptionId": id, "error": err.Error()})
		n.setState(func(s *State) {
			s.PurchaseState = PurchaseError
			s.PurchaseError = err.Error()
		})
		return
	}
	n.LoadSubscription(ctx)
}

// EventSource is the push-channel surface the notifier consumes. Satisfied by
// *events.Client, including the nil no-op client.
type EventSource interface {
	OnSubscriptionUpdated(fn func(model.SubscriptionUpdated))
}

// BindEvents wires the push channel: any subscription_updated event triggers a
// full subscription re-fetch. The payload identifies the subscription but is
// deliberately not trusted for state; the API is the source of truth.
func (n *Notifier) BindEvents(ev EventSource) {
	ev.OnSubscriptionUpdated(func(e model.SubscriptionUpdated) {
		n.log.Info("subscription update pushed, re-fetching", map[string]any{
			"subscriptionId": e.SubscriptionID,
			"status":         string(e.Status),
		})
		n.LoadSubscription(context.Background())
	})
}

func (n *Notifier) beginPurchase() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.inFlight {
		return false
	}
	n.inFlight = true
	return true
}

func (n *Notifier) endPurchase() {
	n.mu.Lock()
	n.inFlight = false
	n.mu.Unlock()
}

// failureOf recovers the FailureInfo carried by a repository error.
func failureOf(err error) result.FailureInfo {
	var f result.FailureInfo
	if errors.As(err, &f) {
		return f
	}
	return result.ServerFailure(err.Error())
}
