// Package cli wires the engine's services into a cobra command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/domain"
	"github.com/BharathVasireddy/numericalz-sub006/internal/service"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// App carries the services the commands act on.
type App struct {
	Clients     service.ClientService
	Reviewers   service.ReviewerService
	Obligations service.ObligationService
	Transitions service.TransitionService
	DueDates    service.DueDateService
	Rollover    service.RolloverService
	Assignment  service.AssignmentService

	// LoopInterval is the scheduler tick for `run loop`.
	LoopInterval time.Duration

	Out io.Writer
}

const dateLayout = "2006-01-02"

func (a *App) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(a.Out)
	return tw
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDate accepts bare dates only; obligations live on day granularity.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// parseNow resolves the --now override. Empty means wall-clock time; the
// scheduler commands take an explicit date so runs are reproducible.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q, expected YYYY-MM-DD or RFC3339", s)
	}
	return d, nil
}

// actorFlags adds the actor identification flags shared by every command
// that writes attributed history.
func actorFlags(cmd *cobra.Command, actor *domain.Actor) {
	cmd.Flags().StringVar(&actor.ID, "actor-id", "", "id of the staff member performing the action")
	cmd.Flags().StringVar(&actor.Name, "actor-name", "", "display name of the staff member")
	_ = cmd.MarkFlagRequired("actor-id")
	_ = cmd.MarkFlagRequired("actor-name")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
