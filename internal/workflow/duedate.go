package workflow

import (
	"fmt"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/period"
)

// Due-date override operations for annual obligations. The auto-computed
// due date is always exactly twelve calendar months after the period end;
// manual overrides are sticky until explicitly forced or reset.

// SetManualDueDate pins the due date to a staff-chosen value.
func SetManualDueDate(obl *domain.Obligation, date time.Time, actor domain.Actor, now time.Time) error {
	if !obl.PeriodEnd.IsZero() && date.Before(obl.PeriodEnd) {
		return fmt.Errorf("due date %s before period end %s: %w",
			date.Format("2006-01-02"), obl.PeriodEnd.Format("2006-01-02"), ErrInvalidDate)
	}
	obl.DueDate = date
	obl.DueSource = domain.DueSourceManual
	obl.DueUpdatedBy = actor.ID
	obl.DueUpdatedAt = &now
	obl.UpdatedAt = now
	return nil
}

// ResetAutoDueDate recomputes the due date from the period end and clears
// any manual override.
func ResetAutoDueDate(obl *domain.Obligation, actor domain.Actor, now time.Time) error {
	if obl.PeriodEnd.IsZero() {
		return ErrNoPeriodEnd
	}
	obl.DueDate = period.AddMonthsClamped(obl.PeriodEnd, 12)
	obl.DueSource = domain.DueSourceAuto
	obl.DueUpdatedBy = actor.ID
	obl.DueUpdatedAt = &now
	obl.UpdatedAt = now
	return nil
}

// DueDateDecision is the outcome of evaluating a registry-reported period
// end against the obligation's current due-date state.
type DueDateDecision struct {
	ShouldUpdate bool
	NewValue     time.Time
	Warnings     []string
}

// ShouldUpdateDueDate decides whether a changed period end from the
// upstream registry may overwrite the stored due date. Manual overrides
// are sticky: without force the decision is no, with a warning, so staff
// corrections are never silently clobbered by registry refreshes.
func ShouldUpdateDueDate(obl *domain.Obligation, newPeriodEnd time.Time, force bool) DueDateDecision {
	newValue := period.AddMonthsClamped(newPeriodEnd, 12)
	if obl.DueSource == domain.DueSourceManual && !force {
		return DueDateDecision{
			ShouldUpdate: false,
			NewValue:     newValue,
			Warnings: []string{fmt.Sprintf(
				"due date was manually set by %s; registry value %s not applied (use force to override)",
				obl.DueUpdatedBy, newValue.Format("2006-01-02"))},
		}
	}
	if obl.DueSource == domain.DueSourceAuto && obl.DueDate.Equal(newValue) {
		return DueDateDecision{ShouldUpdate: false, NewValue: newValue}
	}
	return DueDateDecision{ShouldUpdate: true, NewValue: newValue}
}
