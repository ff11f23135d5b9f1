// Package workflow holds the stage catalogs and the state machine that
// advances obligations through them.
package workflow

import (
	"fmt"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

// StageDefinition is one ordered catalog entry. Ordinals define the total
// order that makes backward moves (and their milestone cleanup range)
// well-defined. Catalogs are append-only per kind.
type StageDefinition struct {
	ID        domain.StageID
	Ordinal   int
	Milestone domain.MilestoneField // empty when the stage stamps nothing
	Terminal  bool
}

// Catalog is the fixed stage sequence for one obligation kind.
type Catalog struct {
	kind   domain.ObligationKind
	stages []StageDefinition
	byID   map[domain.StageID]StageDefinition
}

// vatStages is the quarterly VAT return progression.
var vatStages = []StageDefinition{
	{ID: domain.StageAwaitingPeriodEnd, Ordinal: 1},
	{ID: domain.StagePendingChase, Ordinal: 2, Milestone: domain.MilestoneChaseStarted},
	{ID: domain.StagePaperworkChased, Ordinal: 3, Milestone: domain.MilestonePaperworkChased},
	{ID: domain.StagePaperworkReceived, Ordinal: 4, Milestone: domain.MilestonePaperworkReceived},
	{ID: domain.StageWorkInProgress, Ordinal: 5, Milestone: domain.MilestoneWorkStarted},
	{ID: domain.StageQueriesPending, Ordinal: 6},
	{ID: domain.StageReviewPendingManager, Ordinal: 7, Milestone: domain.MilestoneManagerReviewed},
	{ID: domain.StageSentToClient, Ordinal: 8, Milestone: domain.MilestoneSentToClient},
	{ID: domain.StageClientApproved, Ordinal: 9, Milestone: domain.MilestoneClientApproved},
	{ID: domain.StageFiled, Ordinal: 10, Milestone: domain.MilestoneFiled, Terminal: true},
}

// annualStages is the progression shared by annual accounts, corporation
// tax and confirmation statements; it adds a partner review ahead of the
// client approval gate.
var annualStages = []StageDefinition{
	{ID: domain.StageAwaitingPeriodEnd, Ordinal: 1},
	{ID: domain.StagePendingChase, Ordinal: 2, Milestone: domain.MilestoneChaseStarted},
	{ID: domain.StagePaperworkChased, Ordinal: 3, Milestone: domain.MilestonePaperworkChased},
	{ID: domain.StagePaperworkReceived, Ordinal: 4, Milestone: domain.MilestonePaperworkReceived},
	{ID: domain.StageWorkInProgress, Ordinal: 5, Milestone: domain.MilestoneWorkStarted},
	{ID: domain.StageQueriesPending, Ordinal: 6},
	{ID: domain.StageReviewPendingManager, Ordinal: 7, Milestone: domain.MilestoneManagerReviewed},
	{ID: domain.StageReviewPendingPartner, Ordinal: 8, Milestone: domain.MilestonePartnerReviewed},
	{ID: domain.StageSentToClient, Ordinal: 9, Milestone: domain.MilestoneSentToClient},
	{ID: domain.StageClientApproved, Ordinal: 10, Milestone: domain.MilestoneClientApproved},
	{ID: domain.StageFiled, Ordinal: 11, Milestone: domain.MilestoneFiled, Terminal: true},
}

var catalogs = map[domain.ObligationKind]*Catalog{
	domain.KindVATReturn:             newCatalog(domain.KindVATReturn, vatStages),
	domain.KindAnnualAccounts:        newCatalog(domain.KindAnnualAccounts, annualStages),
	domain.KindCorporationTax:        newCatalog(domain.KindCorporationTax, annualStages),
	domain.KindConfirmationStatement: newCatalog(domain.KindConfirmationStatement, annualStages),
}

// knownMilestones is the exhaustive set of milestone fields a catalog may
// reference; ValidateCatalogs fails startup on anything outside it.
var knownMilestones = map[domain.MilestoneField]bool{
	domain.MilestoneChaseStarted:      true,
	domain.MilestonePaperworkChased:   true,
	domain.MilestonePaperworkReceived: true,
	domain.MilestoneWorkStarted:       true,
	domain.MilestoneManagerReviewed:   true,
	domain.MilestonePartnerReviewed:   true,
	domain.MilestoneSentToClient:      true,
	domain.MilestoneClientApproved:    true,
	domain.MilestoneFiled:             true,
}

func newCatalog(kind domain.ObligationKind, stages []StageDefinition) *Catalog {
	byID := make(map[domain.StageID]StageDefinition, len(stages))
	for _, s := range stages {
		byID[s.ID] = s
	}
	return &Catalog{kind: kind, stages: stages, byID: byID}
}

// CatalogFor returns the stage catalog for an obligation kind.
func CatalogFor(kind domain.ObligationKind) (*Catalog, error) {
	c, ok := catalogs[kind]
	if !ok {
		return nil, fmt.Errorf("no stage catalog for obligation kind %q", kind)
	}
	return c, nil
}

// ValidateCatalogs checks every catalog at startup: ordinals strictly
// ascending, exactly one terminal stage (last), the distinguished initial
// stages present, and every mapped milestone field known. An unmapped
// stage is a startup failure, not a runtime surprise.
func ValidateCatalogs() error {
	for kind, c := range catalogs {
		if len(c.stages) < 3 {
			return fmt.Errorf("catalog %s: too few stages", kind)
		}
		prev := 0
		terminals := 0
		for _, s := range c.stages {
			if s.Ordinal <= prev {
				return fmt.Errorf("catalog %s: ordinal %d for stage %s not strictly ascending", kind, s.Ordinal, s.ID)
			}
			prev = s.Ordinal
			if s.Terminal {
				terminals++
			}
			if s.Milestone != "" && !knownMilestones[s.Milestone] {
				return fmt.Errorf("catalog %s: stage %s maps unknown milestone field %q", kind, s.ID, s.Milestone)
			}
		}
		if terminals != 1 || !c.stages[len(c.stages)-1].Terminal {
			return fmt.Errorf("catalog %s: expected exactly one terminal stage, last in order", kind)
		}
		if c.stages[0].ID != domain.StageAwaitingPeriodEnd {
			return fmt.Errorf("catalog %s: first stage must be %s", kind, domain.StageAwaitingPeriodEnd)
		}
		if c.stages[1].ID != domain.StagePendingChase {
			return fmt.Errorf("catalog %s: initial working stage must be %s", kind, domain.StagePendingChase)
		}
	}
	return nil
}

// Stage looks up a stage definition by ID.
func (c *Catalog) Stage(id domain.StageID) (StageDefinition, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Stages returns the catalog in ordinal order.
func (c *Catalog) Stages() []StageDefinition {
	out := make([]StageDefinition, len(c.stages))
	copy(out, c.stages)
	return out
}

// InitialStage is the distinguished non-working stage new instances start
// in while their period is still running.
func (c *Catalog) InitialStage() StageDefinition {
	return c.stages[0]
}

// InitialWorkingStage is the first stage where staff action is expected.
func (c *Catalog) InitialWorkingStage() StageDefinition {
	return c.stages[1]
}

// TerminalStage is the filed/complete stage.
func (c *Catalog) TerminalStage() StageDefinition {
	return c.stages[len(c.stages)-1]
}

// IsTerminal reports whether a stage marks the obligation filed.
func (c *Catalog) IsTerminal(id domain.StageID) bool {
	s, ok := c.byID[id]
	return ok && s.Terminal
}

// MilestonesInRange returns the milestone fields of all stages with
// ordinal in [lo, hi]: the cleanup range for a backward move, covering
// both the re-entered stage and the vacated one.
func (c *Catalog) MilestonesInRange(lo, hi int) []domain.MilestoneField {
	var fields []domain.MilestoneField
	for _, s := range c.stages {
		if s.Ordinal >= lo && s.Ordinal <= hi && s.Milestone != "" {
			fields = append(fields, s.Milestone)
		}
	}
	return fields
}
