package domain

import "time"

type ReviewerRole string

const (
	RoleStaff   ReviewerRole = "staff"
	RoleManager ReviewerRole = "manager"
	RolePartner ReviewerRole = "partner"
)

var ValidReviewerRoles = map[string]bool{
	"staff": true, "manager": true, "partner": true,
}

// Reviewer is a staff member eligible to own obligations.
type Reviewer struct {
	ID        string
	Name      string
	Role      ReviewerRole
	Active    bool
	CreatedAt time.Time
}
