package workflow

import (
	"fmt"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/google/uuid"
)

// TransitionOptions carries the caller-supplied knobs for a single move.
type TransitionOptions struct {
	// ConfirmFiling acknowledges the filing confirmation precondition on
	// the terminal stage. Without it the move soft-fails with a
	// ConfirmationRequiredError.
	ConfirmFiling bool

	// Reopen allows the one legal move off a terminal stage.
	Reopen bool

	// AssignReviewer, when non-nil, updates the owner in the same move.
	// An empty string unassigns.
	AssignReviewer *string

	Notes string
}

// Result describes the side effects of a successful transition so the
// persistence layer can commit them atomically with the stage update.
type Result struct {
	History           domain.HistoryEntry
	StampedMilestone  *domain.MilestoneField
	ClearedMilestones []domain.MilestoneField
	Terminal          bool
}

// Apply moves an obligation to targetStage, mutating it in place.
// Side effects are all-or-nothing from the caller's perspective: the
// caller persists the mutated obligation, the returned milestone changes
// and the history entry in one transaction, or none of them.
//
// Backward moves clear every milestone with ordinal between the
// re-entered stage and the vacated stage inclusive, so milestones never
// describe a future relative to the obligation's current position.
func Apply(obl *domain.Obligation, targetStage domain.StageID, actor domain.Actor, now time.Time, opts TransitionOptions) (*Result, error) {
	catalog, err := CatalogFor(obl.Kind)
	if err != nil {
		return nil, err
	}
	target, ok := catalog.Stage(targetStage)
	if !ok {
		return nil, fmt.Errorf("stage %q not in %s catalog: %w", targetStage, obl.Kind, ErrInvalidTransition)
	}
	current, ok := catalog.Stage(obl.CurrentStage)
	if !ok {
		return nil, fmt.Errorf("obligation %s in unknown stage %q: %w", obl.ID, obl.CurrentStage, ErrInvalidTransition)
	}
	if target.ID == current.ID {
		return nil, fmt.Errorf("obligation %s already in stage %s: %w", obl.ID, target.ID, ErrInvalidTransition)
	}
	if current.Terminal && !opts.Reopen {
		return nil, fmt.Errorf("obligation %s is filed; reopen required to move off %s: %w", obl.ID, current.ID, ErrInvalidTransition)
	}
	if target.Terminal && !opts.ConfirmFiling {
		return nil, &ConfirmationRequiredError{
			Stage:   target.ID,
			Warning: "confirm the filing acknowledgement has been received before marking as filed",
		}
	}

	result := &Result{Terminal: target.Terminal}

	if target.Ordinal < current.Ordinal {
		// Undo: clear the milestone range and do not restamp the
		// re-entered stage.
		for _, field := range catalog.MilestonesInRange(target.Ordinal, current.Ordinal) {
			if _, stamped := obl.Milestone(field); stamped {
				obl.ClearMilestone(field)
				result.ClearedMilestones = append(result.ClearedMilestones, field)
			}
		}
	} else if target.Milestone != "" {
		obl.SetMilestone(target.Milestone, domain.Milestone{
			ReachedAt: now,
			ActorID:   actor.ID,
			ActorName: actor.Name,
		})
		field := target.Milestone
		result.StampedMilestone = &field
	}

	from := current.ID
	obl.CurrentStage = target.ID
	obl.UpdatedAt = now
	if opts.AssignReviewer != nil {
		if *opts.AssignReviewer == "" {
			obl.AssignedReviewerID = nil
		} else {
			obl.AssignedReviewerID = opts.AssignReviewer
		}
	}

	result.History = domain.HistoryEntry{
		ID:           uuid.New().String(),
		ObligationID: obl.ID,
		FromStage:    &from,
		ToStage:      target.ID,
		ChangedAt:    now,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Notes:        opts.Notes,
	}
	return result, nil
}

// CreationEntry builds the ledger record written when an instance is
// first created; FromStage is nil by convention.
func CreationEntry(obl *domain.Obligation, actor domain.Actor, now time.Time, notes string) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:           uuid.New().String(),
		ObligationID: obl.ID,
		FromStage:    nil,
		ToStage:      obl.CurrentStage,
		ChangedAt:    now,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Notes:        notes,
	}
}

// IsTerminal reports whether the obligation sits in its catalog's
// terminal stage.
func IsTerminal(obl *domain.Obligation) bool {
	catalog, err := CatalogFor(obl.Kind)
	if err != nil {
		return false
	}
	return catalog.IsTerminal(obl.CurrentStage)
}
