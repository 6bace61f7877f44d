package service

import (
	"context"
	"errors"

	"github.com/the-momentum/open-wearables-sync/internal/adapter"
	"github.com/the-momentum/open-wearables-sync/internal/provider"
)

var (
	// ErrSyncInProgress is returned by StartSync while another session is
	// active. The call is a no-op; no state is touched.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrSyncCancelled is the internal signal that the cooperative cancel
	// flag was observed. It pauses the session like a network loss does.
	ErrSyncCancelled = errors.New("sync cancelled")

	// ErrBudgetExhausted signals the execution budget ran out mid-session.
	// Handled exactly like a network pause: state stays resumable.
	ErrBudgetExhausted = errors.New("execution budget exhausted")

	// ErrAuthFailed is the only failure surfaced to the caller as an
	// error: credentials are absent, expired beyond refresh, or the API
	// key was rejected. Re-authentication is required.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrProviderFailed wraps type-local provider errors. The affected
	// type is skipped so the remaining types keep progressing.
	ErrProviderFailed = errors.New("provider query failed")
)

// isPause reports whether err pauses the session while keeping it
// resumable: connectivity loss, cancellation, exhausted budget, or
// temporarily inaccessible source data.
func isPause(err error) bool {
	return errors.Is(err, adapter.ErrRemoteUnavailable) ||
		errors.Is(err, provider.ErrUnavailable) ||
		errors.Is(err, ErrSyncCancelled) ||
		errors.Is(err, ErrBudgetExhausted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
