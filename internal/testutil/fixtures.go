package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/google/uuid"
)

var testCodeCounter atomic.Int64

// Client options
type ClientOption func(*domain.Client)

func WithQuarterGroup(g domain.QuarterGroup) ClientOption {
	return func(c *domain.Client) {
		c.VATQuarterGroup = &g
	}
}

func WithYearEnd(month time.Month, day int) ClientOption {
	return func(c *domain.Client) {
		c.YearEndMonth = month
		c.YearEndDay = day
	}
}

func WithRegistryRef(ref string) ClientOption {
	return func(c *domain.Client) {
		c.RegistryRef = ref
	}
}

func WithClientCode(code string) ClientOption {
	return func(c *domain.Client) {
		c.Code = code
	}
}

func WithInactive() ClientOption {
	return func(c *domain.Client) {
		c.Active = false
	}
}

func defaultClientCode() string {
	n := testCodeCounter.Add(1)
	return fmt.Sprintf("NZ-%03d", n)
}

func NewTestClient(name string, opts ...ClientOption) *domain.Client {
	now := time.Now().UTC()
	c := &domain.Client{
		ID:        uuid.New().String(),
		Code:      defaultClientCode(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reviewer options
type ReviewerOption func(*domain.Reviewer)

func WithRole(role domain.ReviewerRole) ReviewerOption {
	return func(r *domain.Reviewer) {
		r.Role = role
	}
}

func WithReviewerInactive() ReviewerOption {
	return func(r *domain.Reviewer) {
		r.Active = false
	}
}

func WithReviewerCreatedAt(t time.Time) ReviewerOption {
	return func(r *domain.Reviewer) {
		r.CreatedAt = t
	}
}

func NewTestReviewer(name string, opts ...ReviewerOption) *domain.Reviewer {
	r := &domain.Reviewer{
		ID:        uuid.New().String(),
		Name:      name,
		Role:      domain.RoleStaff,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Obligation options
type ObligationOption func(*domain.Obligation)

func WithKind(k domain.ObligationKind) ObligationOption {
	return func(o *domain.Obligation) {
		o.Kind = k
	}
}

func WithPeriod(start, end time.Time) ObligationOption {
	return func(o *domain.Obligation) {
		o.PeriodStart = start
		o.PeriodEnd = end
	}
}

func WithDueDate(d time.Time) ObligationOption {
	return func(o *domain.Obligation) {
		o.DueDate = d
	}
}

func WithStage(s domain.StageID) ObligationOption {
	return func(o *domain.Obligation) {
		o.CurrentStage = s
	}
}

func WithReviewer(id string) ObligationOption {
	return func(o *domain.Obligation) {
		o.AssignedReviewerID = &id
	}
}

func WithMilestone(field domain.MilestoneField, at time.Time) ObligationOption {
	return func(o *domain.Obligation) {
		o.SetMilestone(field, domain.Milestone{
			ReachedAt: at,
			ActorID:   domain.SystemActor.ID,
			ActorName: domain.SystemActor.Name,
		})
	}
}

func WithManualDue(d time.Time, by string) ObligationOption {
	return func(o *domain.Obligation) {
		now := time.Now().UTC()
		o.DueDate = d
		o.DueSource = domain.DueSourceManual
		o.DueUpdatedBy = by
		o.DueUpdatedAt = &now
	}
}

func NewTestObligation(clientID string, opts ...ObligationOption) *domain.Obligation {
	now := time.Now().UTC()
	periodEnd := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)
	o := &domain.Obligation{
		ID:           uuid.New().String(),
		ClientID:     clientID,
		Kind:         domain.KindVATReturn,
		PeriodStart:  time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    periodEnd,
		DueDate:      time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC),
		DueSource:    domain.DueSourceAuto,
		CurrentStage: domain.StageAwaitingPeriodEnd,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
