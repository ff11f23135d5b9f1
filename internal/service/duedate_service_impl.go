package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/registry"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
)

type dueDateService struct {
	clients  repository.ClientRepo
	registry registry.Client
	uow      db.UnitOfWork
	logger   *slog.Logger
}

func NewDueDateService(clients repository.ClientRepo, reg registry.Client, uow db.UnitOfWork, logger *slog.Logger) DueDateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &dueDateService{clients: clients, registry: reg, uow: uow, logger: logger}
}

func (s *dueDateService) SetManual(ctx context.Context, obligationID string, date time.Time, actor domain.Actor) (*domain.Obligation, error) {
	return s.mutate(ctx, obligationID, func(obl *domain.Obligation, now time.Time) error {
		return workflow.SetManualDueDate(obl, date, actor, now)
	})
}

func (s *dueDateService) ResetAuto(ctx context.Context, obligationID string, actor domain.Actor) (*domain.Obligation, error) {
	return s.mutate(ctx, obligationID, func(obl *domain.Obligation, now time.Time) error {
		return workflow.ResetAutoDueDate(obl, actor, now)
	})
}

// RefreshFromRegistry re-derives the due date from the registry's view of
// the period end. A sticky manual override survives unless force is set;
// the returned warnings explain any refusal.
func (s *dueDateService) RefreshFromRegistry(ctx context.Context, obligationID string, force bool) (*domain.Obligation, []string, error) {
	var warnings []string
	obl, err := s.mutate(ctx, obligationID, func(obl *domain.Obligation, now time.Time) error {
		client, err := s.clients.GetByID(ctx, obl.ClientID)
		if err != nil {
			return err
		}
		if client.RegistryRef == "" {
			return fmt.Errorf("client %s has no registry reference", client.Code)
		}
		info, err := s.registry.FetchAuthoritativePeriodEnd(ctx, client.RegistryRef)
		if err != nil {
			return err
		}

		decision := workflow.ShouldUpdateDueDate(obl, info.PeriodEnd, force)
		warnings = decision.Warnings
		if !decision.ShouldUpdate {
			return errNoChange
		}
		obl.PeriodEnd = info.PeriodEnd
		obl.DueDate = decision.NewValue
		obl.DueSource = domain.DueSourceAuto
		obl.DueUpdatedBy = domain.SystemActor.ID
		obl.DueUpdatedAt = &now
		obl.UpdatedAt = now
		return nil
	})
	if errors.Is(err, errNoChange) {
		// Nothing committed; report the current state and the warnings.
		current, getErr := s.currentState(ctx, obligationID)
		if getErr != nil {
			return nil, warnings, getErr
		}
		return current, warnings, nil
	}
	return obl, warnings, err
}

// errNoChange aborts the mutation transaction without surfacing an error.
var errNoChange = errors.New("no due date change")

func (s *dueDateService) currentState(ctx context.Context, obligationID string) (*domain.Obligation, error) {
	var obl *domain.Obligation
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		obl, err = repository.NewSQLiteObligationRepo(tx).GetByID(ctx, obligationID)
		return err
	})
	return obl, err
}

// mutate runs a due-date mutation under the optimistic version check.
// Overrides only apply to annual kinds; VAT deadlines are statutory.
func (s *dueDateService) mutate(ctx context.Context, obligationID string, fn func(obl *domain.Obligation, now time.Time) error) (*domain.Obligation, error) {
	now := time.Now().UTC()
	var obl *domain.Obligation
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txObligations := repository.NewSQLiteObligationRepo(tx)
		fresh, err := txObligations.GetByID(ctx, obligationID)
		if err != nil {
			return err
		}
		if !fresh.Kind.IsAnnual() {
			return fmt.Errorf("obligation %s is %s: %w", fresh.ID, fresh.Kind, ErrNotAnnual)
		}
		expectedVersion := fresh.Version

		if err := fn(fresh, now); err != nil {
			return err
		}
		if err := txObligations.UpdateVersioned(ctx, fresh, expectedVersion); err != nil {
			return err
		}
		obl = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "due_date_updated",
		"obligation_id", obl.ID,
		"due_date", obl.DueDate.Format("2006-01-02"),
		"source", string(obl.DueSource))
	return obl, nil
}
