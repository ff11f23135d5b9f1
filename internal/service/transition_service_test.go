package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/notify"
	"github.com/BharathVasireddy/numericalz-sub006/internal/testutil"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

var staffActor = domain.Actor{ID: "staff-1", Name: "Sam Staff"}

func seedObligation(t *testing.T, env *testEnv, opts ...testutil.ObligationOption) *domain.Obligation {
	t.Helper()
	ctx := context.Background()
	client := testutil.NewTestClient("Seed Ltd",
		testutil.WithQuarterGroup(domain.QuarterGroup1),
		testutil.WithYearEnd(time.March, 31))
	require.NoError(t, env.clients.Create(ctx, client))
	obl := testutil.NewTestObligation(client.ID, opts...)
	require.NoError(t, env.obligations.Create(ctx, obl))
	return obl
}

func TestTransition_ForwardStampsMilestoneAndHistory(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewTransitionService(env.uow, notifier, nil)

	obl := seedObligation(t, env, testutil.WithStage(domain.StagePendingChase))

	updated, err := svc.Transition(ctx, obl.ID, domain.StagePaperworkChased, staffActor, workflow.TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.StagePaperworkChased, updated.CurrentStage)
	assert.Equal(t, 2, updated.Version)

	fetched, err := env.obligations.GetByID(ctx, obl.ID)
	require.NoError(t, err)
	m, ok := fetched.Milestone(domain.MilestonePaperworkChased)
	require.True(t, ok)
	assert.Equal(t, staffActor.ID, m.ActorID)

	entries, err := env.history.ListByObligation(ctx, obl.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].FromStage)
	assert.Equal(t, domain.StagePendingChase, *entries[0].FromStage)
	assert.Equal(t, domain.StagePaperworkChased, entries[0].ToStage)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, obl.ID, notifier.events[0].ObligationID)
	assert.Equal(t, domain.StagePaperworkChased, notifier.events[0].ToStage)
}

func TestTransition_FilingRequiresConfirmation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := NewTransitionService(env.uow, nil, nil)

	obl := seedObligation(t, env, testutil.WithStage(domain.StageClientApproved))

	_, err := svc.Transition(ctx, obl.ID, domain.StageFiled, staffActor, workflow.TransitionOptions{})
	require.Error(t, err)
	cr, ok := workflow.AsConfirmationRequired(err)
	require.True(t, ok)
	assert.Equal(t, domain.StageFiled, cr.Stage)
	assert.NotEmpty(t, cr.Warning)

	// Soft fail: nothing committed.
	fetched, err := env.obligations.GetByID(ctx, obl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageClientApproved, fetched.CurrentStage)
	assert.Equal(t, 1, fetched.Version)

	// Confirmed move succeeds and stamps the filed milestone.
	updated, err := svc.Transition(ctx, obl.ID, domain.StageFiled, staffActor, workflow.TransitionOptions{ConfirmFiling: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StageFiled, updated.CurrentStage)
	_, ok = updated.Milestone(domain.MilestoneFiled)
	assert.True(t, ok)
}

func TestTransition_TerminalLockAndReopen(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := NewTransitionService(env.uow, nil, nil)

	obl := seedObligation(t, env, testutil.WithStage(domain.StageFiled),
		testutil.WithMilestone(domain.MilestoneFiled, time.Now().UTC()))

	_, err := svc.Transition(ctx, obl.ID, domain.StageWorkInProgress, staffActor, workflow.TransitionOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	updated, err := svc.Transition(ctx, obl.ID, domain.StageWorkInProgress, staffActor, workflow.TransitionOptions{Reopen: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StageWorkInProgress, updated.CurrentStage)
}

func TestTransition_BackwardClearsMilestoneRange(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := NewTransitionService(env.uow, nil, nil)

	at := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	obl := seedObligation(t, env,
		testutil.WithKind(domain.KindAnnualAccounts),
		testutil.WithStage(domain.StageReviewPendingPartner),
		testutil.WithMilestone(domain.MilestoneChaseStarted, at),
		testutil.WithMilestone(domain.MilestonePaperworkChased, at.Add(time.Hour)),
		testutil.WithMilestone(domain.MilestonePaperworkReceived, at.Add(2*time.Hour)),
		testutil.WithMilestone(domain.MilestoneWorkStarted, at.Add(3*time.Hour)),
		testutil.WithMilestone(domain.MilestoneManagerReviewed, at.Add(4*time.Hour)),
		testutil.WithMilestone(domain.MilestonePartnerReviewed, at.Add(5*time.Hour)))

	// Partner review (ordinal 8) back to paperwork chased (ordinal 3):
	// every milestone in ordinals 3 through 8 is cleared, including the
	// re-entered stage's own stamp. chase_started (ordinal 2) survives.
	updated, err := svc.Transition(ctx, obl.ID, domain.StagePaperworkChased, staffActor, workflow.TransitionOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.StagePaperworkChased, updated.CurrentStage)

	fetched, err := env.obligations.GetByID(ctx, obl.ID)
	require.NoError(t, err)
	_, ok := fetched.Milestone(domain.MilestoneChaseStarted)
	assert.True(t, ok, "milestone below the cleared range must survive")
	for _, field := range []domain.MilestoneField{
		domain.MilestonePaperworkChased,
		domain.MilestonePaperworkReceived,
		domain.MilestoneWorkStarted,
		domain.MilestoneManagerReviewed,
		domain.MilestonePartnerReviewed,
	} {
		_, ok := fetched.Milestone(field)
		assert.False(t, ok, "milestone %s should be cleared", field)
	}
}

func TestTransition_ReviewerUpdateInSameCall(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := NewTransitionService(env.uow, nil, nil)

	rev := testutil.NewTestReviewer("Owner")
	require.NoError(t, env.reviewers.Create(ctx, rev))
	obl := seedObligation(t, env, testutil.WithStage(domain.StagePendingChase))

	updated, err := svc.Transition(ctx, obl.ID, domain.StagePaperworkChased, staffActor,
		workflow.TransitionOptions{AssignReviewer: &rev.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedReviewerID)
	assert.Equal(t, rev.ID, *updated.AssignedReviewerID)
}

func TestTransition_RollbackOnHistoryFailure(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	obl := seedObligation(t, env, testutil.WithStage(domain.StagePendingChase))

	// Writes inside the tx: versioned update, milestone stamp, history
	// append. Fail the third and nothing may persist.
	boom := errors.New("history write failed")
	uow := &testutil.FailOnNthExecUoW{DB: env.db, FailOn: 3, Err: boom}
	svc := NewTransitionService(uow, nil, nil)

	_, err := svc.Transition(ctx, obl.ID, domain.StagePaperworkChased, staffActor, workflow.TransitionOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	fetched, err := env.obligations.GetByID(ctx, obl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StagePendingChase, fetched.CurrentStage)
	assert.Equal(t, 1, fetched.Version)
	_, ok := fetched.Milestone(domain.MilestonePaperworkChased)
	assert.False(t, ok)

	entries, err := env.history.ListByObligation(ctx, obl.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransition_SameStageRejected(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := NewTransitionService(env.uow, nil, nil)

	obl := seedObligation(t, env, testutil.WithStage(domain.StagePendingChase))

	_, err := svc.Transition(ctx, obl.ID, domain.StagePendingChase, staffActor, workflow.TransitionOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}
