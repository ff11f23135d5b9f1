package domain

import (
	"fmt"
	"regexp"
	"time"
)

var clientCodePattern = regexp.MustCompile(`^[A-Z]{2,4}-?[0-9]{2,5}$`)

// Client is the engine's projection of a record-store client: just the
// cadence configuration and registry reference the engine consumes.
// Cadence fields are immutable once set; changing them is an operator
// action outside the engine.
type Client struct {
	ID   string
	Code string
	Name string

	// Quarterly cadence (VAT). Nil when the client is not VAT registered.
	VATQuarterGroup *QuarterGroup

	// Annual cadence anchor (accounting year end). Zero month when unset.
	YearEndMonth time.Month
	YearEndDay   int

	// Company registry reference for authoritative period-end lookups.
	RegistryRef string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateCode checks the client code format: 2-4 uppercase letters, an
// optional hyphen, then 2-5 digits (e.g. NZ-101, ACME42).
func (c *Client) ValidateCode() error {
	if c.Code == "" {
		return fmt.Errorf("client code is required")
	}
	if !clientCodePattern.MatchString(c.Code) {
		return fmt.Errorf("client code %q must be 2-4 uppercase letters, optional hyphen, then 2-5 digits (e.g. NZ-101)", c.Code)
	}
	return nil
}

// Validate checks cadence configuration consistency.
func (c *Client) Validate() error {
	if err := c.ValidateCode(); err != nil {
		return err
	}
	if c.Name == "" {
		return fmt.Errorf("client name is required")
	}
	if c.VATQuarterGroup != nil && !ValidQuarterGroups[*c.VATQuarterGroup] {
		return fmt.Errorf("unknown VAT quarter group %q", *c.VATQuarterGroup)
	}
	if (c.YearEndMonth == 0) != (c.YearEndDay == 0) {
		return fmt.Errorf("year end month and day must be set together")
	}
	if c.YearEndMonth != 0 {
		if c.YearEndMonth < time.January || c.YearEndMonth > time.December {
			return fmt.Errorf("year end month %d out of range", c.YearEndMonth)
		}
		if c.YearEndDay < 1 || c.YearEndDay > 31 {
			return fmt.Errorf("year end day %d out of range", c.YearEndDay)
		}
	}
	return nil
}

// CadenceFor reports whether the client is configured for the given kind:
// VAT requires a quarter group, annual kinds require a year-end anchor.
func (c *Client) CadenceFor(kind ObligationKind) bool {
	if kind == KindVATReturn {
		return c.VATQuarterGroup != nil
	}
	return c.YearEndMonth != 0
}
