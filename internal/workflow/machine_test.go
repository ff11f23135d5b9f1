package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	testActor = domain.Actor{ID: "u-1", Name: "Jordan Smith"}
)

func newVATObligation() *domain.Obligation {
	return &domain.Obligation{
		ID:           "ob-1",
		ClientID:     "c-1",
		Kind:         domain.KindVATReturn,
		PeriodStart:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		DueDate:      time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		DueSource:    domain.DueSourceAuto,
		CurrentStage: domain.StagePendingChase,
		Version:      1,
	}
}

// advance walks an obligation forward through the given stages.
func advance(t *testing.T, obl *domain.Obligation, stages ...domain.StageID) {
	t.Helper()
	for _, stage := range stages {
		opts := TransitionOptions{}
		if stage == domain.StageFiled {
			opts.ConfirmFiling = true
		}
		_, err := Apply(obl, stage, testActor, testNow, opts)
		require.NoError(t, err, "advancing to %s", stage)
	}
}

func TestApply_ForwardStampsMilestone(t *testing.T) {
	obl := newVATObligation()
	res, err := Apply(obl, domain.StagePaperworkChased, testActor, testNow, TransitionOptions{Notes: "first chase sent"})
	require.NoError(t, err)

	assert.Equal(t, domain.StagePaperworkChased, obl.CurrentStage)
	require.NotNil(t, res.StampedMilestone)
	assert.Equal(t, domain.MilestonePaperworkChased, *res.StampedMilestone)

	m, ok := obl.Milestone(domain.MilestonePaperworkChased)
	require.True(t, ok)
	assert.Equal(t, testNow, m.ReachedAt)
	assert.Equal(t, testActor.ID, m.ActorID)
	assert.Equal(t, testActor.Name, m.ActorName)

	require.NotNil(t, res.History.FromStage)
	assert.Equal(t, domain.StagePendingChase, *res.History.FromStage)
	assert.Equal(t, domain.StagePaperworkChased, res.History.ToStage)
	assert.Equal(t, "first chase sent", res.History.Notes)
	assert.False(t, res.Terminal)
}

func TestApply_UnknownStage(t *testing.T) {
	obl := newVATObligation()
	_, err := Apply(obl, domain.StageID("shredded"), testActor, testNow, TransitionOptions{})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_StageNotInKindCatalog(t *testing.T) {
	// Partner review exists only on the annual catalog.
	obl := newVATObligation()
	_, err := Apply(obl, domain.StageReviewPendingPartner, testActor, testNow, TransitionOptions{})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_SameStageRejected(t *testing.T) {
	obl := newVATObligation()
	_, err := Apply(obl, domain.StagePendingChase, testActor, testNow, TransitionOptions{})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_TerminalRequiresConfirmation(t *testing.T) {
	obl := newVATObligation()
	advance(t, obl, domain.StagePaperworkChased, domain.StagePaperworkReceived, domain.StageWorkInProgress)

	_, err := Apply(obl, domain.StageFiled, testActor, testNow, TransitionOptions{})
	require.Error(t, err)
	cr, ok := AsConfirmationRequired(err)
	require.True(t, ok, "expected ConfirmationRequiredError, got %v", err)
	assert.Equal(t, domain.StageFiled, cr.Stage)
	assert.NotEmpty(t, cr.Warning)
	assert.Equal(t, domain.StageWorkInProgress, obl.CurrentStage, "soft failure must not move the obligation")

	res, err := Apply(obl, domain.StageFiled, testActor, testNow, TransitionOptions{ConfirmFiling: true})
	require.NoError(t, err)
	assert.True(t, res.Terminal)
	_, stamped := obl.Milestone(domain.MilestoneFiled)
	assert.True(t, stamped)
}

func TestApply_TerminalLocksWithoutReopen(t *testing.T) {
	obl := newVATObligation()
	advance(t, obl, domain.StageWorkInProgress, domain.StageFiled)

	_, err := Apply(obl, domain.StageWorkInProgress, testActor, testNow, TransitionOptions{})
	require.ErrorIs(t, err, ErrInvalidTransition)

	res, err := Apply(obl, domain.StageWorkInProgress, testActor, testNow, TransitionOptions{Reopen: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StageWorkInProgress, obl.CurrentStage)
	assert.Contains(t, res.ClearedMilestones, domain.MilestoneFiled, "reopen is a backward move; filed milestone cleared")
}

func TestApply_BackwardClearsInclusiveRange(t *testing.T) {
	obl := &domain.Obligation{
		ID:           "ob-2",
		ClientID:     "c-1",
		Kind:         domain.KindAnnualAccounts,
		PeriodEnd:    time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		CurrentStage: domain.StagePendingChase,
		Version:      1,
	}
	advance(t, obl,
		domain.StagePaperworkChased,    // ordinal 3
		domain.StagePaperworkReceived,  // 4
		domain.StageWorkInProgress,     // 5
		domain.StageQueriesPending,     // 6
		domain.StageReviewPendingManager, // 7
		domain.StageReviewPendingPartner, // 8
	)
	// Stamped so far: chased(3), received(4), work(5), manager(7), partner(8).

	res, err := Apply(obl, domain.StagePaperworkChased, testActor, testNow, TransitionOptions{Notes: "paperwork was incomplete"})
	require.NoError(t, err)

	// Everything in ordinals 3-8 cleared, nothing below touched.
	for _, field := range []domain.MilestoneField{
		domain.MilestonePaperworkChased,
		domain.MilestonePaperworkReceived,
		domain.MilestoneWorkStarted,
		domain.MilestoneManagerReviewed,
		domain.MilestonePartnerReviewed,
	} {
		_, stamped := obl.Milestone(field)
		assert.False(t, stamped, "milestone %s should be cleared", field)
		assert.Contains(t, res.ClearedMilestones, field)
	}
	assert.Nil(t, res.StampedMilestone, "backward move does not restamp the re-entered stage")
	assert.Equal(t, domain.StagePaperworkChased, obl.CurrentStage)
}

func TestApply_BackwardLeavesEarlierMilestones(t *testing.T) {
	obl := newVATObligation()
	// chase_started stamped at ordinal 2 by assignment.
	obl.SetMilestone(domain.MilestoneChaseStarted, domain.Milestone{ReachedAt: testNow, ActorID: "u-9"})
	advance(t, obl, domain.StagePaperworkChased, domain.StagePaperworkReceived, domain.StageWorkInProgress)

	_, err := Apply(obl, domain.StagePaperworkChased, testActor, testNow, TransitionOptions{})
	require.NoError(t, err)

	_, stamped := obl.Milestone(domain.MilestoneChaseStarted)
	assert.True(t, stamped, "milestones below the undo range stay put")
}

func TestApply_ReviewerUpdateInSameCall(t *testing.T) {
	obl := newVATObligation()
	reviewer := "rev-7"
	_, err := Apply(obl, domain.StagePaperworkChased, testActor, testNow, TransitionOptions{AssignReviewer: &reviewer})
	require.NoError(t, err)
	require.NotNil(t, obl.AssignedReviewerID)
	assert.Equal(t, "rev-7", *obl.AssignedReviewerID)

	unassign := ""
	_, err = Apply(obl, domain.StagePaperworkReceived, testActor, testNow, TransitionOptions{AssignReviewer: &unassign})
	require.NoError(t, err)
	assert.Nil(t, obl.AssignedReviewerID)
}

func TestApply_HistoryEntryPerTransition(t *testing.T) {
	obl := newVATObligation()
	res1, err := Apply(obl, domain.StagePaperworkChased, testActor, testNow, TransitionOptions{})
	require.NoError(t, err)
	res2, err := Apply(obl, domain.StagePaperworkReceived, testActor, testNow.Add(time.Hour), TransitionOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, res1.History.ID, res2.History.ID)
	assert.Equal(t, domain.StagePaperworkChased, *res2.History.FromStage)
	assert.Equal(t, domain.StagePaperworkReceived, res2.History.ToStage)
}

func TestIsTerminal(t *testing.T) {
	obl := newVATObligation()
	assert.False(t, IsTerminal(obl))
	obl.CurrentStage = domain.StageFiled
	assert.True(t, IsTerminal(obl))
}

func TestErrorsUnwrap(t *testing.T) {
	obl := newVATObligation()
	advance(t, obl, domain.StageFiled)
	_, err := Apply(obl, domain.StagePendingChase, testActor, testNow, TransitionOptions{})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}
