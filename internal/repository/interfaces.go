package repository

import (
	"context"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByCode(ctx context.Context, code string) (*domain.Client, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
}

type ReviewerRepo interface {
	Create(ctx context.Context, r *domain.Reviewer) error
	GetByID(ctx context.Context, id string) (*domain.Reviewer, error)
	// ListEligible returns active reviewers of the given role in a stable
	// order (creation time, then id), the round-robin pool for one
	// scheduler run.
	ListEligible(ctx context.Context, role domain.ReviewerRole) ([]*domain.Reviewer, error)
	List(ctx context.Context) ([]*domain.Reviewer, error)
}

type ObligationRepo interface {
	Create(ctx context.Context, o *domain.Obligation) error
	GetByID(ctx context.Context, id string) (*domain.Obligation, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Obligation, error)
	ListByStage(ctx context.Context, stage domain.StageID) ([]*domain.Obligation, error)

	// ListUnassignedInStage feeds the auto-assignment scan.
	ListUnassignedInStage(ctx context.Context, stage domain.StageID) ([]*domain.Obligation, error)

	// ListAwaitingPromotion returns instances sitting in the given stage
	// whose period end has passed as of asOf.
	ListAwaitingPromotion(ctx context.Context, stage domain.StageID, asOf time.Time) ([]*domain.Obligation, error)

	// ListRolloverCandidates returns terminal obligations whose filed
	// milestone is at or before cutoff and which have no sibling with a
	// later period end for the same client+kind.
	ListRolloverCandidates(ctx context.Context, terminalStage domain.StageID, filedField domain.MilestoneField, cutoff time.Time) ([]*domain.Obligation, error)

	// HasOpenInstance reports whether a non-terminal instance exists for
	// client+kind; the creation guard for the non-overlap invariant.
	HasOpenInstance(ctx context.Context, clientID string, kind domain.ObligationKind, terminalStage domain.StageID) (bool, error)

	// HasNewerSibling reports whether any instance for client+kind has a
	// period end after periodEnd; the rollover commit-time guard.
	HasNewerSibling(ctx context.Context, clientID string, kind domain.ObligationKind, periodEnd time.Time) (bool, error)

	// UpdateVersioned commits o only if the stored version still equals
	// expectedVersion, then increments it. Returns
	// ErrConcurrentModification when another transition won the race.
	UpdateVersioned(ctx context.Context, o *domain.Obligation, expectedVersion int) error

	SetMilestone(ctx context.Context, obligationID string, field domain.MilestoneField, m domain.Milestone) error
	ClearMilestones(ctx context.Context, obligationID string, fields []domain.MilestoneField) error
}

type HistoryRepo interface {
	// Append writes one immutable ledger entry; entries are never
	// updated or deleted.
	Append(ctx context.Context, e *domain.HistoryEntry) error
	// ListByObligation returns the ledger ordered by changedAt ascending.
	ListByObligation(ctx context.Context, obligationID string) ([]domain.HistoryEntry, error)
}
