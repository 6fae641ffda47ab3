// Package store is the client's local persistence: speed-test history and the
// plan cache. Backed by SQLite on disk, with an in-memory implementation for
// tests and ephemeral runs.
package store

import (
	"context"

	"vpn-client/pkg/model"
)

// historyCap bounds the persisted speed-test history.
const historyCap = 100

// Store defines the local persistence layer.
type Store interface {
	// AppendSpeedTest records one result, pruning history beyond the cap.
	AppendSpeedTest(ctx context.Context, r model.SpeedTestResult) error
	// ListSpeedTests returns results in insertion order, oldest first.
	// Callers sort as needed.
	ListSpeedTests(ctx context.Context, limit int) ([]model.SpeedTestResult, error)
	// CachedPlans returns the cached plan list, empty when no cache exists.
	CachedPlans(ctx context.Context) ([]model.Plan, error)
	// StorePlans replaces the plan cache wholesale.
	StorePlans(ctx context.Context, plans []model.Plan) error
	Close() error
}
