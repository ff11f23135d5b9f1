package service

import "errors"

var (
	// ErrCadenceNotConfigured indicates the client lacks the cadence
	// configuration the requested obligation kind needs (quarter group for
	// VAT, year-end anchor for annual kinds).
	ErrCadenceNotConfigured = errors.New("client cadence not configured for kind")

	// ErrOpenInstanceExists guards the one-open-instance invariant: a
	// non-terminal obligation already exists for this client and kind.
	ErrOpenInstanceExists = errors.New("open obligation already exists for client and kind")

	// ErrNotAnnual indicates a due-date override was attempted on a kind
	// that derives its deadline statutorily (VAT).
	ErrNotAnnual = errors.New("due date overrides apply to annual obligations only")

	// ErrNotEligible indicates an obligation does not meet the
	// auto-assignment filter (stage, assignment state or filing month).
	ErrNotEligible = errors.New("obligation not eligible for assignment")

	// ErrNoReviewers indicates the eligible reviewer pool is empty.
	ErrNoReviewers = errors.New("no eligible reviewers")
)
