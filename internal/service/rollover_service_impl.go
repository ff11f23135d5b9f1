package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/notify"
	"github.com/BharathVasireddy/numericalz-sub006/internal/period"
	"github.com/BharathVasireddy/numericalz-sub006/internal/registry"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
	"github.com/google/uuid"
)

type rolloverService struct {
	clients          repository.ClientRepo
	obligations      repository.ObligationRepo
	registry         registry.Client
	uow              db.UnitOfWork
	coolingOffMonths int
	notifier         notify.Notifier
	logger           *slog.Logger
}

// NewRolloverService creates the scheduler that spawns successor
// obligations after filing and promotes instances whose period has ended.
// coolingOffMonths is the quiet window after the filed milestone before a
// successor appears; values below 1 default to 1.
func NewRolloverService(clients repository.ClientRepo, obligations repository.ObligationRepo, reg registry.Client, uow db.UnitOfWork, coolingOffMonths int, notifier notify.Notifier, logger *slog.Logger) RolloverService {
	if coolingOffMonths < 1 {
		coolingOffMonths = 1
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &rolloverService{
		clients:          clients,
		obligations:      obligations,
		registry:         reg,
		uow:              uow,
		coolingOffMonths: coolingOffMonths,
		notifier:         notifier,
		logger:           logger,
	}
}

// RunRollover scans filed obligations past the cooling-off window and
// creates each one's successor. One failed obligation never aborts the
// scan, and a successor that appeared since the scan (another run, a
// manual creation) is skipped by a guard re-checked inside the commit
// transaction, so the pass is idempotent.
func (s *rolloverService) RunRollover(ctx context.Context, now time.Time) (*RolloverReport, error) {
	cutoff := coolingOffCutoff(now.UTC(), s.coolingOffMonths)
	candidates, err := s.obligations.ListRolloverCandidates(ctx, domain.StageFiled, domain.MilestoneFiled, cutoff)
	if err != nil {
		return nil, fmt.Errorf("scanning rollover candidates: %w", err)
	}

	report := &RolloverReport{}
	for _, candidate := range candidates {
		successorID, err := s.rollOne(ctx, candidate, now)
		if err != nil {
			s.logger.WarnContext(ctx, "rollover_failed",
				"obligation_id", candidate.ID,
				"client_id", candidate.ClientID,
				"kind", string(candidate.Kind),
				"error", err.Error())
			report.Errors = append(report.Errors, fmt.Errorf("obligation %s: %w", candidate.ID, err))
			continue
		}
		if successorID != "" {
			report.Created = append(report.Created, successorID)
		}
	}
	s.logger.InfoContext(ctx, "rollover_run_complete",
		"candidates", len(candidates),
		"created", len(report.Created),
		"errors", len(report.Errors))
	return report, nil
}

// coolingOffCutoff shifts now back by the cooling-off months, keeping the
// time of day so the window is exactly n months, not n months rounded down
// to midnight.
func coolingOffCutoff(now time.Time, months int) time.Time {
	d := period.AddMonthsClamped(now, -months)
	return time.Date(d.Year(), d.Month(), d.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
}

// rollOne creates the successor for one filed obligation. Returns the new
// ID, or "" when the commit-time guard found a successor already present.
func (s *rolloverService) rollOne(ctx context.Context, candidate *domain.Obligation, now time.Time) (string, error) {
	client, err := s.clients.GetByID(ctx, candidate.ClientID)
	if err != nil {
		return "", err
	}

	p, err := s.nextPeriod(ctx, client, candidate)
	if err != nil {
		return "", err
	}

	catalog, err := workflow.CatalogFor(candidate.Kind)
	if err != nil {
		return "", err
	}

	nowUTC := now.UTC()
	successor := &domain.Obligation{
		ID:           uuid.New().String(),
		ClientID:     candidate.ClientID,
		Kind:         candidate.Kind,
		PeriodStart:  p.Start,
		PeriodEnd:    p.End,
		DueDate:      p.StatutoryDue,
		DueSource:    domain.DueSourceAuto,
		CurrentStage: catalog.InitialStage().ID,
		Version:      1,
		CreatedAt:    nowUTC,
		UpdatedAt:    nowUTC,
	}

	created := false
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txObligations := repository.NewSQLiteObligationRepo(tx)
		txHistory := repository.NewSQLiteHistoryRepo(tx)

		newer, err := txObligations.HasNewerSibling(ctx, candidate.ClientID, candidate.Kind, candidate.PeriodEnd)
		if err != nil {
			return err
		}
		if newer {
			return nil
		}

		if err := txObligations.Create(ctx, successor); err != nil {
			return err
		}
		entry := workflow.CreationEntry(successor, domain.SystemActor, nowUTC, "created by rollover")
		if err := txHistory.Append(ctx, &entry); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return "", err
	}
	if !created {
		return "", nil
	}

	s.logger.InfoContext(ctx, "rollover_created",
		"obligation_id", successor.ID,
		"predecessor_id", candidate.ID,
		"client_id", client.ID,
		"kind", string(successor.Kind),
		"period_end", successor.PeriodEnd.Format("2006-01-02"))
	return successor.ID, nil
}

// nextPeriod derives the successor's period. Annual kinds prefer the
// registry's authoritative period end; any registry failure falls back to
// the calendar with a warning, never an aborted rollover.
func (s *rolloverService) nextPeriod(ctx context.Context, client *domain.Client, predecessor *domain.Obligation) (period.Period, error) {
	if predecessor.Kind == domain.KindVATReturn {
		if client.VATQuarterGroup == nil {
			return period.Period{}, fmt.Errorf("client %s has no VAT quarter group: %w", client.Code, ErrCadenceNotConfigured)
		}
		return period.NextQuarter(*client.VATQuarterGroup, predecessor.PeriodEnd)
	}

	if s.registry != nil && client.RegistryRef != "" {
		info, err := s.registry.FetchAuthoritativePeriodEnd(ctx, client.RegistryRef)
		if err == nil && info.PeriodEnd.After(predecessor.PeriodEnd) {
			return period.Period{
				Start:        predecessor.PeriodEnd.AddDate(0, 0, 1),
				End:          info.PeriodEnd,
				StatutoryDue: period.AddMonthsClamped(info.PeriodEnd, 12),
			}, nil
		}
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			s.logger.WarnContext(ctx, "registry_lookup_failed_falling_back",
				"client_id", client.ID,
				"registry_ref", client.RegistryRef,
				"error", err.Error())
		}
	}

	if client.YearEndMonth == 0 {
		return period.Period{}, fmt.Errorf("client %s has no year end anchor: %w", client.Code, ErrCadenceNotConfigured)
	}
	return period.ComputeAnnual(client.YearEndMonth, client.YearEndDay, predecessor.PeriodEnd.AddDate(0, 0, 1))
}

// RunPromotions moves instances out of the waiting stage once their
// period has ended. Idempotent: an instance already promoted simply stops
// matching the scan filter.
func (s *rolloverService) RunPromotions(ctx context.Context, now time.Time) (*RolloverReport, error) {
	nowUTC := now.UTC()
	waiting, err := s.obligations.ListAwaitingPromotion(ctx, domain.StageAwaitingPeriodEnd, nowUTC)
	if err != nil {
		return nil, fmt.Errorf("scanning promotions: %w", err)
	}

	report := &RolloverReport{}
	for _, obl := range waiting {
		if err := s.promoteOne(ctx, obl.ID, nowUTC); err != nil {
			s.logger.WarnContext(ctx, "promotion_failed",
				"obligation_id", obl.ID,
				"error", err.Error())
			report.Errors = append(report.Errors, fmt.Errorf("obligation %s: %w", obl.ID, err))
			continue
		}
		report.Promoted = append(report.Promoted, obl.ID)
	}
	s.logger.InfoContext(ctx, "promotion_run_complete",
		"waiting", len(waiting),
		"promoted", len(report.Promoted),
		"errors", len(report.Errors))
	return report, nil
}

func (s *rolloverService) promoteOne(ctx context.Context, obligationID string, now time.Time) error {
	var committed *domain.Obligation
	var result *workflow.Result
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txObligations := repository.NewSQLiteObligationRepo(tx)
		txHistory := repository.NewSQLiteHistoryRepo(tx)

		fresh, err := txObligations.GetByID(ctx, obligationID)
		if err != nil {
			return err
		}
		// Re-check inside the tx; another run may have promoted it already.
		if fresh.CurrentStage != domain.StageAwaitingPeriodEnd || fresh.PeriodEnd.After(now) {
			return nil
		}
		expectedVersion := fresh.Version

		res, err := workflow.Apply(fresh, domain.StagePendingChase, domain.SystemActor, now, workflow.TransitionOptions{
			Notes: "period ended; promoted automatically",
		})
		if err != nil {
			return err
		}
		if err := txObligations.UpdateVersioned(ctx, fresh, expectedVersion); err != nil {
			return err
		}
		if res.StampedMilestone != nil {
			m, _ := fresh.Milestone(*res.StampedMilestone)
			if err := txObligations.SetMilestone(ctx, fresh.ID, *res.StampedMilestone, m); err != nil {
				return err
			}
		}
		if err := txHistory.Append(ctx, &res.History); err != nil {
			return err
		}
		committed = fresh
		result = res
		return nil
	})
	if err != nil || committed == nil {
		return err
	}

	s.notifier.Notify(ctx, notify.Event{
		ObligationID:     committed.ID,
		ClientID:         committed.ClientID,
		Kind:             committed.Kind,
		FromStage:        result.History.FromStage,
		ToStage:          result.History.ToStage,
		ActorID:          domain.SystemActor.ID,
		ActorName:        domain.SystemActor.Name,
		AssignedReviewer: committed.AssignedReviewerID,
	})
	return nil
}
