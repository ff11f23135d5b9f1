package service

import (
	"context"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
)

type ClientService interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByCode(ctx context.Context, code string) (*domain.Client, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
}

type ReviewerService interface {
	Create(ctx context.Context, r *domain.Reviewer) error
	GetByID(ctx context.Context, id string) (*domain.Reviewer, error)
	List(ctx context.Context) ([]*domain.Reviewer, error)
}

// ObligationService creates and reads obligation instances. Creation
// computes the first period from the client's cadence and enforces the
// one-open-instance invariant.
type ObligationService interface {
	CreateFirst(ctx context.Context, clientID string, kind domain.ObligationKind, refDate time.Time) (*domain.Obligation, error)
	GetByID(ctx context.Context, id string) (*domain.Obligation, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Obligation, error)
	History(ctx context.Context, obligationID string) ([]domain.HistoryEntry, error)
	StageDurations(ctx context.Context, obligationID string, now time.Time) ([]domain.StageDuration, error)
}

// TransitionService moves obligations between stages transactionally.
type TransitionService interface {
	// Transition re-reads the obligation inside the transaction, applies
	// the move, and commits stage, milestones and history atomically under
	// an optimistic version check.
	Transition(ctx context.Context, obligationID string, target domain.StageID, actor domain.Actor, opts workflow.TransitionOptions) (*domain.Obligation, error)
}

// DueDateService owns manual due-date overrides for annual obligations.
type DueDateService interface {
	SetManual(ctx context.Context, obligationID string, date time.Time, actor domain.Actor) (*domain.Obligation, error)
	ResetAuto(ctx context.Context, obligationID string, actor domain.Actor) (*domain.Obligation, error)
	// RefreshFromRegistry re-reads the authoritative period end and applies
	// it unless a manual override is sticky. Returns the decision warnings.
	RefreshFromRegistry(ctx context.Context, obligationID string, force bool) (*domain.Obligation, []string, error)
}

// RolloverReport summarizes one rollover scheduler pass.
type RolloverReport struct {
	Created  []string
	Promoted []string
	Errors   []error
}

// RolloverService creates successor obligations after filing and promotes
// instances whose period has ended.
type RolloverService interface {
	RunRollover(ctx context.Context, now time.Time) (*RolloverReport, error)
	RunPromotions(ctx context.Context, now time.Time) (*RolloverReport, error)
}

// AssignmentReport summarizes one auto-assignment pass.
type AssignmentReport struct {
	Assigned map[string]string // obligationID -> reviewerID
	Skipped  int
	Errors   []error
}

// AssignmentService distributes unassigned obligations across the
// reviewer pool.
type AssignmentService interface {
	RunAutoAssign(ctx context.Context, now time.Time) (*AssignmentReport, error)
	AssignOne(ctx context.Context, obligationID string, now time.Time) (*domain.Obligation, error)
}
