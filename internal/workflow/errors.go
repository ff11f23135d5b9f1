package workflow

import (
	"errors"
	"fmt"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
)

var (
	// ErrInvalidTransition indicates an illegal stage move: unknown stage,
	// or a move off a terminal stage without an explicit reopen.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrInvalidDate indicates a manual due date before the period end.
	ErrInvalidDate = errors.New("due date precedes period end")

	// ErrNoPeriodEnd indicates a reset-to-auto without a basis date.
	ErrNoPeriodEnd = errors.New("obligation has no period end")
)

// ConfirmationRequiredError is a soft failure: the move into the terminal
// stage needs an explicit confirmation flag. The warning is surfaced
// verbatim so a human can decide to proceed.
type ConfirmationRequiredError struct {
	Stage   domain.StageID
	Warning string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required to enter %s: %s", e.Stage, e.Warning)
}

// AsConfirmationRequired unwraps err into a ConfirmationRequiredError.
func AsConfirmationRequired(err error) (*ConfirmationRequiredError, bool) {
	var cr *ConfirmationRequiredError
	if errors.As(err, &cr) {
		return cr, true
	}
	return nil, false
}
