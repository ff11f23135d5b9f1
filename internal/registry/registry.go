// Package registry looks up authoritative accounting period ends from the
// company registry. The engine treats the registry as best-effort: every
// caller falls back to calendar arithmetic when it is unavailable.
package registry

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable indicates the registry endpoint is unreachable or
	// returned a server error. Callers fall back to the calendar.
	ErrUnavailable = errors.New("company registry unavailable")

	// ErrNotFound indicates the registry has no record for the company
	// reference.
	ErrNotFound = errors.New("company not found in registry")
)

// PeriodInfo is the registry's view of a company's next accounting period.
type PeriodInfo struct {
	PeriodEnd time.Time
}

// Client fetches authoritative period ends for a company reference.
type Client interface {
	FetchAuthoritativePeriodEnd(ctx context.Context, companyRef string) (PeriodInfo, error)
}

// StaticClient serves canned period ends, for tests and offline operation.
type StaticClient struct {
	// Periods maps company reference to period end. A missing key returns
	// ErrNotFound; a nil map makes every lookup return ErrUnavailable.
	Periods map[string]time.Time
}

func (s *StaticClient) FetchAuthoritativePeriodEnd(_ context.Context, companyRef string) (PeriodInfo, error) {
	if s.Periods == nil {
		return PeriodInfo{}, ErrUnavailable
	}
	end, ok := s.Periods[companyRef]
	if !ok {
		return PeriodInfo{}, ErrNotFound
	}
	return PeriodInfo{PeriodEnd: end}, nil
}
