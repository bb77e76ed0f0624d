package lifecycle

import "errors"

var (
	// ErrChoreNotFound and ErrUserNotFound are detected before any mutation.
	ErrChoreNotFound = errors.New("chore not found")
	ErrUserNotFound  = errors.New("user not found")

	// ErrAlreadyCompleted means completion was invoked on a completed chore.
	// Completion is strictly one-way; the caller usually has a stale view.
	ErrAlreadyCompleted = errors.New("chore already completed")

	// ErrPointsCredit and ErrBadgeEvaluation occur after the chore is marked
	// completed. The completion stands; only the failed sub-step should be
	// retried.
	ErrPointsCredit    = errors.New("points credit failed")
	ErrBadgeEvaluation = errors.New("badge evaluation failed")
)
