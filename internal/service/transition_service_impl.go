package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/notify"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
)

type transitionService struct {
	uow      db.UnitOfWork
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewTransitionService(uow db.UnitOfWork, notifier notify.Notifier, logger *slog.Logger) TransitionService {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &transitionService{uow: uow, notifier: notifier, logger: logger}
}

// Transition moves one obligation to a target stage. The obligation is
// re-read inside the transaction so the optimistic version check covers
// the whole read-modify-write; the stage update, milestone writes and
// history entry commit together or not at all. The notification goes out
// only after a successful commit.
func (s *transitionService) Transition(ctx context.Context, obligationID string, target domain.StageID, actor domain.Actor, opts workflow.TransitionOptions) (*domain.Obligation, error) {
	now := time.Now().UTC()

	var obl *domain.Obligation
	var result *workflow.Result

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txObligations := repository.NewSQLiteObligationRepo(tx)
		txHistory := repository.NewSQLiteHistoryRepo(tx)

		fresh, err := txObligations.GetByID(ctx, obligationID)
		if err != nil {
			return err
		}
		expectedVersion := fresh.Version

		res, err := workflow.Apply(fresh, target, actor, now, opts)
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
		if len(res.ClearedMilestones) > 0 {
			if err := txObligations.ClearMilestones(ctx, fresh.ID, res.ClearedMilestones); err != nil {
				return err
			}
		}
		if err := txHistory.Append(ctx, &res.History); err != nil {
			return err
		}

		obl = fresh
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.Event{
		ObligationID:     obl.ID,
		ClientID:         obl.ClientID,
		Kind:             obl.Kind,
		FromStage:        result.History.FromStage,
		ToStage:          result.History.ToStage,
		ActorID:          actor.ID,
		ActorName:        actor.Name,
		AssignedReviewer: obl.AssignedReviewerID,
	})
	s.logger.InfoContext(ctx, "obligation_transitioned",
		"obligation_id", obl.ID,
		"to_stage", string(target),
		"actor", actor.ID,
		"terminal", result.Terminal)
	return obl, nil
}
