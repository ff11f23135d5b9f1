package workflow

import (
	"testing"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCatalogs(t *testing.T) {
	require.NoError(t, ValidateCatalogs())
}

func TestCatalogFor_AllKinds(t *testing.T) {
	for kind := range domain.ValidObligationKinds {
		c, err := CatalogFor(domain.ObligationKind(kind))
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, domain.StageAwaitingPeriodEnd, c.InitialStage().ID)
		assert.Equal(t, domain.StagePendingChase, c.InitialWorkingStage().ID)
		assert.Equal(t, domain.StageFiled, c.TerminalStage().ID)
		assert.True(t, c.TerminalStage().Terminal)
	}
}

func TestCatalogFor_UnknownKind(t *testing.T) {
	_, err := CatalogFor(domain.ObligationKind("payroll"))
	require.Error(t, err)
}

func TestCatalog_OrdinalsStrictlyAscending(t *testing.T) {
	for kind := range domain.ValidObligationKinds {
		c, err := CatalogFor(domain.ObligationKind(kind))
		require.NoError(t, err)
		prev := 0
		for _, s := range c.Stages() {
			assert.Greater(t, s.Ordinal, prev, "kind %s stage %s", kind, s.ID)
			prev = s.Ordinal
		}
	}
}

func TestCatalog_AnnualHasPartnerReview(t *testing.T) {
	annual, err := CatalogFor(domain.KindAnnualAccounts)
	require.NoError(t, err)
	_, ok := annual.Stage(domain.StageReviewPendingPartner)
	assert.True(t, ok)

	vat, err := CatalogFor(domain.KindVATReturn)
	require.NoError(t, err)
	_, ok = vat.Stage(domain.StageReviewPendingPartner)
	assert.False(t, ok, "VAT catalog has no partner review stage")
}

func TestMilestonesInRange(t *testing.T) {
	c, err := CatalogFor(domain.KindVATReturn)
	require.NoError(t, err)

	// Ordinals 3-8 on the VAT catalog: chased, received, work started,
	// (queries has no milestone), manager review, sent to client.
	fields := c.MilestonesInRange(3, 8)
	assert.Equal(t, []domain.MilestoneField{
		domain.MilestonePaperworkChased,
		domain.MilestonePaperworkReceived,
		domain.MilestoneWorkStarted,
		domain.MilestoneManagerReviewed,
		domain.MilestoneSentToClient,
	}, fields)

	assert.Empty(t, c.MilestonesInRange(6, 6), "queries_pending stamps nothing")
}
