package domain

import "time"

// Obligation is one filing cycle of a recurring obligation for one client.
// At most one non-terminal instance per client+kind exists at any time;
// siblings never overlap in period.
type Obligation struct {
	ID       string
	ClientID string
	Kind     ObligationKind

	PeriodStart time.Time
	PeriodEnd   time.Time

	// Due-date state. Source distinguishes the calendar-derived value from
	// a manual staff override; the override engine owns these fields.
	DueDate      time.Time
	DueSource    DueDateSource
	DueUpdatedBy string
	DueUpdatedAt *time.Time

	CurrentStage       StageID
	AssignedReviewerID *string

	// Milestones keyed by field, written by the workflow state machine.
	Milestones map[MilestoneField]Milestone

	// Version increments on every committed transition; the optimistic
	// lock used to serialize concurrent transition attempts.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Milestone returns the stamped milestone for a field, if present.
func (o *Obligation) Milestone(field MilestoneField) (Milestone, bool) {
	m, ok := o.Milestones[field]
	return m, ok
}

// SetMilestone stamps a milestone, allocating the map on first use.
func (o *Obligation) SetMilestone(field MilestoneField, m Milestone) {
	if o.Milestones == nil {
		o.Milestones = make(map[MilestoneField]Milestone)
	}
	o.Milestones[field] = m
}

// ClearMilestone removes a stamped milestone.
func (o *Obligation) ClearMilestone(field MilestoneField) {
	delete(o.Milestones, field)
}

// Assigned reports whether a reviewer owns this obligation.
func (o *Obligation) Assigned() bool {
	return o.AssignedReviewerID != nil && *o.AssignedReviewerID != ""
}
