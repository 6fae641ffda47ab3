package subscription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpn-client/pkg/api"
	"vpn-client/pkg/attest"
	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/model"
	"vpn-client/pkg/result"
)

type fakeRepo struct {
	mu sync.Mutex

	plans        result.Result[[]model.Plan]
	active       result.Result[*model.Subscription]
	subscribeRes result.Result[model.Subscription]
	restoreRes   result.Result[struct{}]
	cancelRes    result.Result[struct{}]

	subscribeCalls int
	activeCalls    int
	restoreCalls   int
	cancelCalls    int
	lastPlanID     string
	lastPayMethod  string
	subscribeEnter chan struct{} // closed when Subscribe is entered, if set
	subscribeBlock chan struct{} // Subscribe waits for close, if set
}

func (f *fakeRepo) GetPlans(ctx context.Context, strategy api.CacheStrategy) result.Result[[]model.Plan] {
	return f.plans
}

func (f *fakeRepo) GetActiveSubscription(ctx context.Context) result.Result[*model.Subscription] {
	f.mu.Lock()
	f.activeCalls++
	f.mu.Unlock()
	return f.active
}

func (f *fakeRepo) Subscribe(ctx context.Context, planID, paymentMethod string) result.Result[model.Subscription] {
	f.mu.Lock()
	f.subscribeCalls++
	f.lastPlanID = planID
	f.lastPayMethod = paymentMethod
	enter, block := f.subscribeEnter, f.subscribeBlock
	f.mu.Unlock()
	if enter != nil {
		close(enter)
	}
	if block != nil {
		<-block
	}
	return f.subscribeRes
}

func (f *fakeRepo) CancelSubscription(ctx context.Context, id string) result.Result[struct{}] {
	f.mu.Lock()
	f.cancelCalls++
	f.mu.Unlock()
	return f.cancelRes
}

func (f *fakeRepo) RestorePurchases(ctx context.Context) result.Result[struct{}] {
	f.mu.Lock()
	f.restoreCalls++
	f.mu.Unlock()
	return f.restoreRes
}

func (f *fakeRepo) GetTrialStatus(ctx context.Context) result.Result[model.TrialStatus] {
	return result.Ok(model.TrialStatus{})
}

func (f *fakeRepo) ActivateTrial(ctx context.Context) result.Result[model.Subscription] {
	return result.Ok(model.Subscription{})
}

func (f *fakeRepo) counts() (subscribe, active, restore, cancel int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribeCalls, f.activeCalls, f.restoreCalls, f.cancelCalls
}

var testPlans = []model.Plan{
	{ID: "plan-monthly", Name: "Monthly", StoreProductID: "com.example.vpn.monthly", PriceCents: 999, Currency: "USD", PeriodDays: 30},
	{ID: "plan-yearly", Name: "Yearly", StoreProductID: "com.example.vpn.yearly", PriceCents: 7999, Currency: "USD", PeriodDays: 365},
}

func newTestNotifier(repo *fakeRepo, opts ...Option) *Notifier {
	return NewNotifier(repo, logbuf.New(), opts...)
}

func TestLoadBuildsSnapshot(t *testing.T) {
	sub := &model.Subscription{ID: "sub-1", PlanID: "plan-yearly", Status: model.SubscriptionActive}
	repo := &fakeRepo{
		plans:  result.Ok(testPlans),
		active: result.Ok(sub),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())

	state := n.State()
	require.True(t, state.Loaded)
	require.Nil(t, state.LoadError)
	assert.Equal(t, testPlans, state.AvailablePlans)
	require.NotNil(t, state.CurrentSubscription)
	assert.Equal(t, "sub-1", state.CurrentSubscription.ID)
	assert.False(t, state.TrialEligibility, "active subscription blocks trial eligibility")
}

func TestLoadTrialEligibility(t *testing.T) {
	plans := append([]model.Plan{{ID: "plan-trial", Name: "Trial", IsTrial: true, PeriodDays: 7}}, testPlans...)
	repo := &fakeRepo{
		plans:  result.Ok(plans),
		active: result.Ok[*model.Subscription](nil),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())

	assert.True(t, n.State().TrialEligibility)
}

func TestLoadFailureSetsLoadError(t *testing.T) {
	repo := &fakeRepo{
		plans:  result.Fail[[]model.Plan](result.NetworkFailure("no connection to server")),
		active: result.Ok[*model.Subscription](nil),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())

	state := n.State()
	require.NotNil(t, state.LoadError)
	assert.Equal(t, result.FailureNetwork, state.LoadError.Kind)
	assert.False(t, state.Loaded)
}

func TestPurchaseSuccessTransitions(t *testing.T) {
	repo := &fakeRepo{
		plans:  result.Ok(testPlans),
		active: result.Ok[*model.Subscription](nil),
		subscribeRes: result.Ok(model.Subscription{
			ID:     "sub-1",
			PlanID: "plan-yearly",
			Status: model.SubscriptionActive,
		}),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())

	var transitions []PurchaseState
	n.Subscribe(func(s State) { transitions = append(transitions, s.PurchaseState) })

	n.Purchase(context.Background(), testPlans[1])

	// loading is never skipped on the way to success.
	require.Equal(t, []PurchaseState{PurchaseLoading, PurchaseSuccess}, transitions)
	state := n.State()
	require.NotNil(t, state.CurrentSubscription)
	assert.Equal(t, "sub-1", state.CurrentSubscription.ID)
	assert.Empty(t, state.PurchaseError)
	assert.False(t, state.TrialEligibility)
	assert.Equal(t, "plan-yearly", repo.lastPlanID)
	assert.Equal(t, "com.example.vpn.yearly", repo.lastPayMethod)
}

func TestPurchaseFailureKeepsSnapshot(t *testing.T) {
	sub := &model.Subscription{ID: "sub-0", PlanID: "plan-monthly", Status: model.SubscriptionActive}
	repo := &fakeRepo{
		plans:        result.Ok(testPlans),
		active:       result.Ok(sub),
		subscribeRes: result.Fail[model.Subscription](result.ServerFailure("payment declined")),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())
	before := n.State()

	n.Purchase(context.Background(), testPlans[0])

	state := n.State()
	assert.Equal(t, PurchaseError, state.PurchaseState)
	assert.Equal(t, "server: payment declined", state.PurchaseError)
	assert.Equal(t, before.AvailablePlans, state.AvailablePlans)
	require.NotNil(t, state.CurrentSubscription)
	assert.Equal(t, before.CurrentSubscription.ID, state.CurrentSubscription.ID)
}

func TestPurchaseOverlapDropped(t *testing.T) {
	repo := &fakeRepo{
		plans:          result.Ok(testPlans),
		active:         result.Ok[*model.Subscription](nil),
		subscribeRes:   result.Ok(model.Subscription{ID: "sub-1", Status: model.SubscriptionActive}),
		subscribeEnter: make(chan struct{}),
		subscribeBlock: make(chan struct{}),
	}
	n := newTestNotifier(repo)

	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Purchase(context.Background(), testPlans[0])
	}()
	<-repo.subscribeEnter

	// Second call while the first is in flight must not reach the repository.
	n.Purchase(context.Background(), testPlans[1])

	close(repo.subscribeBlock)
	<-done

	subscribe, _, _, _ := repo.counts()
	assert.Equal(t, 1, subscribe)
}

func TestActivateTrialWithoutTrialPlan(t *testing.T) {
	repo := &fakeRepo{
		plans:  result.Ok(testPlans),
		active: result.Ok[*model.Subscription](nil),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())

	n.ActivateTrial(context.Background())

	state := n.State()
	assert.Equal(t, PurchaseError, state.PurchaseState)
	assert.Equal(t, "No trial plan available.", state.PurchaseError)
	subscribe, _, _, _ := repo.counts()
	assert.Zero(t, subscribe, "repository must not be called without a trial plan")
}

func TestActivateTrialPurchasesFirstTrialPlan(t *testing.T) {
	plans := []model.Plan{
		testPlans[0],
		{ID: "plan-trial-a", Name: "Trial A", IsTrial: true, PeriodDays: 7},
		{ID: "plan-trial-b", Name: "Trial B", IsTrial: true, PeriodDays: 14},
	}
	repo := &fakeRepo{
		plans:        result.Ok(plans),
		active:       result.Ok[*model.Subscription](nil),
		subscribeRes: result.Ok(model.Subscription{ID: "sub-t", PlanID: "plan-trial-a", IsTrial: true, Status: model.SubscriptionActive}),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())

	n.ActivateTrial(context.Background())

	assert.Equal(t, "plan-trial-a", repo.lastPlanID)
	assert.Equal(t, PurchaseSuccess, n.State().PurchaseState)
}

func TestClearPurchaseState(t *testing.T) {
	repo := &fakeRepo{
		plans:        result.Ok(testPlans),
		active:       result.Ok[*model.Subscription](nil),
		subscribeRes: result.Fail[model.Subscription](result.ServerFailure("payment declined")),
	}
	n := newTestNotifier(repo)
	n.Purchase(context.Background(), testPlans[0])
	require.Equal(t, PurchaseError, n.State().PurchaseState)

	n.ClearPurchaseState()

	state := n.State()
	assert.Equal(t, PurchaseIdle, state.PurchaseState)
	assert.Empty(t, state.PurchaseError)
}

func TestRestorePurchasesRefetchesUnconditionally(t *testing.T) {
	sub := &model.Subscription{ID: "sub-1", PlanID: "plan-yearly", Status: model.SubscriptionActive}
	repo := &fakeRepo{
		plans:      result.Ok(testPlans),
		active:     result.Ok(sub),
		restoreRes: result.Ok(struct{}{}),
	}
	platform := &fakePlatform{err: errors.New("store unavailable")}
	n := newTestNotifier(repo, WithPurchasePlatform(platform))

	n.RestorePurchases(context.Background())

	// The subscription is re-fetched even though the store restore failed.
	_, active, _, _ := repo.counts()
	assert.Equal(t, 1, active)
	state := n.State()
	assert.Equal(t, PurchaseError, state.PurchaseState)
	assert.Equal(t, "store unavailable", state.PurchaseError)
	require.NotNil(t, state.CurrentSubscription)
	assert.Equal(t, "sub-1", state.CurrentSubscription.ID)
}

func TestRestorePurchasesSuccess(t *testing.T) {
	sub := &model.Subscription{ID: "sub-1", PlanID: "plan-yearly", Status: model.SubscriptionActive}
	repo := &fakeRepo{
		plans:      result.Ok(testPlans),
		active:     result.Ok(sub),
		restoreRes: result.Ok(struct{}{}),
	}
	platform := &fakePlatform{}
	n := newTestNotifier(repo, WithPurchasePlatform(platform))

	n.RestorePurchases(context.Background())

	assert.Equal(t, 1, platform.calls)
	state := n.State()
	assert.Equal(t, PurchaseSuccess, state.PurchaseState)
	require.NotNil(t, state.CurrentSubscription)
}

func TestCancelSubscriptionFailureKeepsSnapshot(t *testing.T) {
	sub := &model.Subscription{ID: "sub-1", PlanID: "plan-yearly", Status: model.SubscriptionActive}
	repo := &fakeRepo{
		plans:     result.Ok(testPlans),
		active:    result.Ok(sub),
		cancelRes: result.Fail[struct{}](result.ServerFailure("already canceled")),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())

	n.CancelSubscription(context.Background(), "sub-1")

	state := n.State()
	assert.Equal(t, PurchaseError, state.PurchaseState)
	require.NotNil(t, state.CurrentSubscription)
	assert.Equal(t, "sub-1", state.CurrentSubscription.ID)
}

type fakeEvents struct {
	fn func(model.SubscriptionUpdated)
}

func (f *fakeEvents) OnSubscriptionUpdated(fn func(model.SubscriptionUpdated)) { f.fn = fn }

func TestPushEventTriggersSingleRefetch(t *testing.T) {
	repo := &fakeRepo{
		plans:  result.Ok(testPlans),
		active: result.Ok(&model.Subscription{ID: "sub-1", Status: model.SubscriptionActive}),
	}
	n := newTestNotifier(repo)
	n.Load(context.Background())
	_, baseline, _, _ := repo.counts()

	src := &fakeEvents{}
	n.BindEvents(src)
	require.NotNil(t, src.fn)

	src.fn(model.SubscriptionUpdated{SubscriptionID: "sub-1", Status: model.SubscriptionCanceled})

	_, active, _, _ := repo.counts()
	assert.Equal(t, baseline+1, active, "one push event triggers exactly one re-fetch")
}

type fakePlatform struct {
	calls int
	err   error
}

func (f *fakePlatform) Restore(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeAttestor struct {
	mu       sync.Mutex
	triggers []string
}

func (f *fakeAttestor) GenerateToken(ctx context.Context, trigger, challenge string) (model.AttestationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	return model.AttestationResult{Status: "verified"}, nil
}

func TestPurchaseFiresAttestation(t *testing.T) {
	repo := &fakeRepo{
		plans:        result.Ok(testPlans),
		active:       result.Ok[*model.Subscription](nil),
		subscribeRes: result.Ok(model.Subscription{ID: "sub-1", Status: model.SubscriptionActive}),
	}
	attestor := &fakeAttestor{}
	n := newTestNotifier(repo, WithAttestor(attestor))

	n.Purchase(context.Background(), testPlans[0])

	require.Eventually(t, func() bool {
		attestor.mu.Lock()
		defer attestor.mu.Unlock()
		return len(attestor.triggers) == 1
	}, time.Second, 10*time.Millisecond)
	attestor.mu.Lock()
	assert.Equal(t, attest.TriggerPurchase, attestor.triggers[0])
	attestor.mu.Unlock()
	assert.Equal(t, PurchaseSuccess, n.State().PurchaseState)
}
