package domain

import "time"

type ObligationKind string

const (
	KindVATReturn             ObligationKind = "vat_return"
	KindAnnualAccounts        ObligationKind = "annual_accounts"
	KindCorporationTax        ObligationKind = "corporation_tax"
	KindConfirmationStatement ObligationKind = "confirmation_statement"
)

// ValidObligationKinds is the canonical set of accepted obligation kind strings.
var ValidObligationKinds = map[string]bool{
	"vat_return": true, "annual_accounts": true,
	"corporation_tax": true, "confirmation_statement": true,
}

// IsAnnual reports whether the kind files once per year. Annual kinds carry
// the due-date override state; the quarterly VAT kind never does.
func (k ObligationKind) IsAnnual() bool {
	return k != KindVATReturn
}

type QuarterGroup string

// The three mutually exclusive VAT quarter groups. Each names the four
// calendar months its quarters end in.
const (
	QuarterGroup1 QuarterGroup = "1_4_7_10"
	QuarterGroup2 QuarterGroup = "2_5_8_11"
	QuarterGroup3 QuarterGroup = "3_6_9_12"
)

var ValidQuarterGroups = map[QuarterGroup]bool{
	QuarterGroup1: true, QuarterGroup2: true, QuarterGroup3: true,
}

type DueDateSource string

const (
	DueSourceAuto   DueDateSource = "auto"
	DueSourceManual DueDateSource = "manual"
)

type StageID string

const (
	StageAwaitingPeriodEnd    StageID = "awaiting_period_end"
	StagePendingChase         StageID = "pending_chase"
	StagePaperworkChased      StageID = "paperwork_chased"
	StagePaperworkReceived    StageID = "paperwork_received"
	StageWorkInProgress       StageID = "work_in_progress"
	StageQueriesPending       StageID = "queries_pending"
	StageReviewPendingManager StageID = "review_pending_manager"
	StageReviewPendingPartner StageID = "review_pending_partner"
	StageSentToClient         StageID = "sent_to_client"
	StageClientApproved       StageID = "client_approved"
	StageFiled                StageID = "filed"
)

// MilestoneField identifies a stamped milestone slot on an obligation.
type MilestoneField string

const (
	MilestoneChaseStarted      MilestoneField = "chase_started"
	MilestonePaperworkChased   MilestoneField = "paperwork_chased"
	MilestonePaperworkReceived MilestoneField = "paperwork_received"
	MilestoneWorkStarted       MilestoneField = "work_started"
	MilestoneManagerReviewed   MilestoneField = "manager_reviewed"
	MilestonePartnerReviewed   MilestoneField = "partner_reviewed"
	MilestoneSentToClient      MilestoneField = "sent_to_client"
	MilestoneClientApproved    MilestoneField = "client_approved"
	MilestoneFiled             MilestoneField = "filed"
)

// Actor identifies who performed a mutation, for milestone and history
// attribution.
type Actor struct {
	ID   string
	Name string
}

// SystemActor attributes mutations made by scheduled jobs.
var SystemActor = Actor{ID: "system", Name: "system"}

// Milestone records when an obligation reached a stage, and who moved it there.
type Milestone struct {
	ReachedAt time.Time
	ActorID   string
	ActorName string
}
