// Package result provides the Result/Failure wrapper used at the repository
// boundary. Expected failure modes (offline, server error, bad credentials)
// travel as values instead of errors so callers always branch explicitly.
package result

import "fmt"

// FailureKind classifies an expected failure.
type FailureKind string

const (
	FailureNetwork    FailureKind = "network"
	FailureServer     FailureKind = "server"
	FailureAuth       FailureKind = "auth"
	FailureValidation FailureKind = "validation"
)

// FailureInfo carries a failure kind plus a human-readable message.
type FailureInfo struct {
	Kind    FailureKind
	Message string
}

func (f FailureInfo) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NetworkFailure builds a network-kind failure.
func NetworkFailure(msg string) FailureInfo {
	return FailureInfo{Kind: FailureNetwork, Message: msg}
}

// ServerFailure builds a server-kind failure.
func ServerFailure(msg string) FailureInfo {
	return FailureInfo{Kind: FailureServer, Message: msg}
}

// AuthFailure builds an auth-kind failure.
func AuthFailure(msg string) FailureInfo {
	return FailureInfo{Kind: FailureAuth, Message: msg}
}

// ValidationFailure builds a validation-kind failure.
func ValidationFailure(msg string) FailureInfo {
	return FailureInfo{Kind: FailureValidation, Message: msg}
}

// Result holds either a value or a FailureInfo, never both.
type Result[T any] struct {
	value   T
	failure FailureInfo
	ok      bool
}

// Ok constructs a success result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail constructs a failure result.
func Fail[T any](f FailureInfo) Result[T] {
	return Result[T]{failure: f}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool { return r.ok }

// Value returns the success value; the zero value when the result is a failure.
func (r Result[T]) Value() T { return r.value }

// Failure returns the failure info; the zero value when the result is a success.
func (r Result[T]) Failure() FailureInfo { return r.failure }

// Unpack returns the value and the failure as an error (nil on success),
// for call sites that want plain Go error flow.
func (r Result[T]) Unpack() (T, error) {
	if r.ok {
		return r.value, nil
	}
	return r.value, r.failure
}
