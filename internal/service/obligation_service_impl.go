package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/period"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
	"github.com/google/uuid"
)

type obligationService struct {
	clients     repository.ClientRepo
	obligations repository.ObligationRepo
	history     repository.HistoryRepo
	uow         db.UnitOfWork
	logger      *slog.Logger
}

func NewObligationService(clients repository.ClientRepo, obligations repository.ObligationRepo, history repository.HistoryRepo, uow db.UnitOfWork, logger *slog.Logger) ObligationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &obligationService{
		clients:     clients,
		obligations: obligations,
		history:     history,
		uow:         uow,
		logger:      logger,
	}
}

// CreateFirst bootstraps the first instance of a recurring obligation. The
// period comes from the client's cadence configuration as of refDate;
// subsequent instances are created by the rollover scheduler.
func (s *obligationService) CreateFirst(ctx context.Context, clientID string, kind domain.ObligationKind, refDate time.Time) (*domain.Obligation, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.CadenceFor(kind) {
		return nil, fmt.Errorf("client %s, kind %s: %w", client.Code, kind, ErrCadenceNotConfigured)
	}

	p, err := computePeriod(client, kind, refDate)
	if err != nil {
		return nil, err
	}

	catalog, err := workflow.CatalogFor(kind)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	obl := &domain.Obligation{
		ID:           uuid.New().String(),
		ClientID:     client.ID,
		Kind:         kind,
		PeriodStart:  p.Start,
		PeriodEnd:    p.End,
		DueDate:      p.StatutoryDue,
		DueSource:    domain.DueSourceAuto,
		CurrentStage: catalog.InitialStage().ID,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txObligations := repository.NewSQLiteObligationRepo(tx)
		txHistory := repository.NewSQLiteHistoryRepo(tx)

		open, err := txObligations.HasOpenInstance(ctx, client.ID, kind, catalog.TerminalStage().ID)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("client %s, kind %s: %w", client.Code, kind, ErrOpenInstanceExists)
		}

		if err := txObligations.Create(ctx, obl); err != nil {
			return err
		}
		entry := workflow.CreationEntry(obl, domain.SystemActor, now, "first instance created")
		return txHistory.Append(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "obligation_created",
		"obligation_id", obl.ID,
		"client_id", client.ID,
		"kind", string(kind),
		"period_end", obl.PeriodEnd.Format("2006-01-02"))
	return obl, nil
}

func (s *obligationService) GetByID(ctx context.Context, id string) (*domain.Obligation, error) {
	return s.obligations.GetByID(ctx, id)
}

func (s *obligationService) ListByClient(ctx context.Context, clientID string) ([]*domain.Obligation, error) {
	return s.obligations.ListByClient(ctx, clientID)
}

func (s *obligationService) History(ctx context.Context, obligationID string) ([]domain.HistoryEntry, error) {
	return s.history.ListByObligation(ctx, obligationID)
}

func (s *obligationService) StageDurations(ctx context.Context, obligationID string, now time.Time) ([]domain.StageDuration, error) {
	entries, err := s.history.ListByObligation(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	return domain.StageDurations(entries, now), nil
}

// computePeriod derives the next filing period for a kind from the
// client's cadence configuration.
func computePeriod(client *domain.Client, kind domain.ObligationKind, ref time.Time) (period.Period, error) {
	if kind == domain.KindVATReturn {
		if client.VATQuarterGroup == nil {
			return period.Period{}, fmt.Errorf("client %s has no VAT quarter group: %w", client.Code, ErrCadenceNotConfigured)
		}
		return period.ComputeQuarter(*client.VATQuarterGroup, ref)
	}
	if client.YearEndMonth == 0 {
		return period.Period{}, fmt.Errorf("client %s has no year end anchor: %w", client.Code, ErrCadenceNotConfigured)
	}
	return period.ComputeAnnual(client.YearEndMonth, client.YearEndDay, ref)
}
