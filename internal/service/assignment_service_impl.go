package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/notify"
	"github.com/BharathVasireddy/numericalz-sub006/internal/period"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/google/uuid"
)

type assignmentService struct {
	clients     repository.ClientRepo
	reviewers   repository.ReviewerRepo
	obligations repository.ObligationRepo
	uow         db.UnitOfWork
	role        domain.ReviewerRole
	notifier    notify.Notifier
	logger      *slog.Logger
}

// NewAssignmentService creates the scheduler that distributes unassigned
// obligations across the reviewer pool of the given role.
func NewAssignmentService(clients repository.ClientRepo, reviewers repository.ReviewerRepo, obligations repository.ObligationRepo, uow db.UnitOfWork, role domain.ReviewerRole, notifier notify.Notifier, logger *slog.Logger) AssignmentService {
	if role == "" {
		role = domain.RoleStaff
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &assignmentService{
		clients:     clients,
		reviewers:   reviewers,
		obligations: obligations,
		uow:         uow,
		role:        role,
		notifier:    notifier,
		logger:      logger,
	}
}

// RunAutoAssign distributes every eligible unassigned obligation across
// the reviewer pool, strict round-robin from the top of the pool order.
// The cursor lives only for this run. Only a pool load failure aborts the
// whole pass; per-obligation failures are isolated.
func (s *assignmentService) RunAutoAssign(ctx context.Context, now time.Time) (*AssignmentReport, error) {
	pool, err := s.reviewers.ListEligible(ctx, s.role)
	if err != nil {
		return nil, fmt.Errorf("loading reviewer pool: %w", err)
	}
	report := &AssignmentReport{Assigned: make(map[string]string)}
	if len(pool) == 0 {
		s.logger.WarnContext(ctx, "auto_assign_skipped", "reason", "empty reviewer pool", "role", string(s.role))
		return report, nil
	}

	candidates, err := s.obligations.ListUnassignedInStage(ctx, domain.StagePendingChase)
	if err != nil {
		return nil, fmt.Errorf("scanning unassigned obligations: %w", err)
	}

	cursor := 0
	for _, candidate := range candidates {
		eligible, err := s.inFilingMonth(ctx, candidate, now)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("obligation %s: %w", candidate.ID, err))
			continue
		}
		if !eligible {
			report.Skipped++
			continue
		}

		reviewer := pool[cursor%len(pool)]
		if err := s.assign(ctx, candidate.ID, reviewer, now); err != nil {
			s.logger.WarnContext(ctx, "auto_assign_failed",
				"obligation_id", candidate.ID,
				"reviewer_id", reviewer.ID,
				"error", err.Error())
			report.Errors = append(report.Errors, fmt.Errorf("obligation %s: %w", candidate.ID, err))
			continue
		}
		report.Assigned[candidate.ID] = reviewer.ID
		cursor++
	}

	s.logger.InfoContext(ctx, "auto_assign_run_complete",
		"candidates", len(candidates),
		"assigned", len(report.Assigned),
		"skipped", report.Skipped,
		"errors", len(report.Errors))
	return report, nil
}

// AssignOne assigns a single obligation on demand using the same
// eligibility filter as the scheduled pass; the first reviewer in pool
// order takes it.
func (s *assignmentService) AssignOne(ctx context.Context, obligationID string, now time.Time) (*domain.Obligation, error) {
	pool, err := s.reviewers.ListEligible(ctx, s.role)
	if err != nil {
		return nil, fmt.Errorf("loading reviewer pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoReviewers
	}

	obl, err := s.obligations.GetByID(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	if obl.CurrentStage != domain.StagePendingChase || obl.Assigned() {
		return nil, fmt.Errorf("obligation %s in stage %s: %w", obl.ID, obl.CurrentStage, ErrNotEligible)
	}
	eligible, err := s.inFilingMonth(ctx, obl, now)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("obligation %s outside its filing month: %w", obl.ID, ErrNotEligible)
	}

	if err := s.assign(ctx, obl.ID, pool[0], now); err != nil {
		return nil, err
	}
	return s.obligations.GetByID(ctx, obligationID)
}

// inFilingMonth gates assignment to the cadence group's filing months:
// the month after each period-end month.
func (s *assignmentService) inFilingMonth(ctx context.Context, obl *domain.Obligation, now time.Time) (bool, error) {
	if obl.Kind == domain.KindVATReturn {
		client, err := s.clients.GetByID(ctx, obl.ClientID)
		if err != nil {
			return false, err
		}
		if client.VATQuarterGroup == nil {
			return false, fmt.Errorf("client %s has no VAT quarter group: %w", client.Code, ErrCadenceNotConfigured)
		}
		return period.IsFilingMonth(*client.VATQuarterGroup, now.UTC().Month())
	}

	// Annual kinds have a single filing month per instance, the month
	// after the period end; like the VAT gate this is a month-of-year
	// check, so a backlog instance stays assignable every anniversary.
	filing := period.AddMonthsClamped(obl.PeriodEnd, 1)
	return now.UTC().Month() == filing.Month(), nil
}

// assign commits one assignment: reviewer set, chase_started stamped with
// the reviewer as actor, one history entry attributed to the system.
// Eligibility is re-checked inside the transaction; a notification goes
// out only after a successful commit.
func (s *assignmentService) assign(ctx context.Context, obligationID string, reviewer *domain.Reviewer, now time.Time) error {
	nowUTC := now.UTC()
	var committed *domain.Obligation
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txObligations := repository.NewSQLiteObligationRepo(tx)
		txHistory := repository.NewSQLiteHistoryRepo(tx)

		fresh, err := txObligations.GetByID(ctx, obligationID)
		if err != nil {
			return err
		}
		if fresh.CurrentStage != domain.StagePendingChase || fresh.Assigned() {
			// Another run got here first; nothing to do.
			return nil
		}
		expectedVersion := fresh.Version

		fresh.AssignedReviewerID = &reviewer.ID
		stamp := domain.Milestone{
			ReachedAt: nowUTC,
			ActorID:   reviewer.ID,
			ActorName: reviewer.Name,
		}
		fresh.SetMilestone(domain.MilestoneChaseStarted, stamp)
		fresh.UpdatedAt = nowUTC

		if err := txObligations.UpdateVersioned(ctx, fresh, expectedVersion); err != nil {
			return err
		}
		if err := txObligations.SetMilestone(ctx, fresh.ID, domain.MilestoneChaseStarted, stamp); err != nil {
			return err
		}

		stage := fresh.CurrentStage
		entry := domain.HistoryEntry{
			ID:           uuid.New().String(),
			ObligationID: fresh.ID,
			FromStage:    &stage,
			ToStage:      stage,
			ChangedAt:    nowUTC,
			ActorID:      domain.SystemActor.ID,
			ActorName:    domain.SystemActor.Name,
			Notes:        fmt.Sprintf("auto-assigned to %s", reviewer.Name),
		}
		if err := txHistory.Append(ctx, &entry); err != nil {
			return err
		}
		committed = fresh
		return nil
	})
	if err != nil || committed == nil {
		return err
	}

	stage := committed.CurrentStage
	s.notifier.Notify(ctx, notify.Event{
		ObligationID:     committed.ID,
		ClientID:         committed.ClientID,
		Kind:             committed.Kind,
		FromStage:        &stage,
		ToStage:          stage,
		ActorID:          domain.SystemActor.ID,
		ActorName:        domain.SystemActor.Name,
		AssignedReviewer: committed.AssignedReviewerID,
	})
	return nil
}
