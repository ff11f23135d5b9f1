package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/BharathVasireddy/numericalz-sub006/internal/service"
	"github.com/BharathVasireddy/numericalz-sub006/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	database := testutil.NewTestDB(t)
	clients := repository.NewSQLiteClientRepo(database)
	reviewers := repository.NewSQLiteReviewerRepo(database)
	obligations := repository.NewSQLiteObligationRepo(database)
	history := repository.NewSQLiteHistoryRepo(database)
	uow := testutil.NewTestUoW(database)

	out := &bytes.Buffer{}
	app := &App{
		Clients:      service.NewClientService(clients),
		Reviewers:    service.NewReviewerService(reviewers),
		Obligations:  service.NewObligationService(clients, obligations, history, uow, nil),
		Transitions:  service.NewTransitionService(uow, nil, nil),
		DueDates:     service.NewDueDateService(clients, nil, uow, nil),
		Rollover:     service.NewRolloverService(clients, obligations, nil, uow, 1, nil, nil),
		Assignment:   service.NewAssignmentService(clients, reviewers, obligations, uow, "staff", nil, nil),
		LoopInterval: time.Hour,
		Out:          out,
	}
	return app, out
}

func execute(t *testing.T, app *App, args ...string) error {
	t.Helper()
	root := NewRootCmd(app)
	root.SetOut(app.Out)
	root.SetErr(app.Out)
	root.SetArgs(args)
	return root.Execute()
}

func TestClientAddAndList(t *testing.T) {
	app, out := newTestApp(t)

	err := execute(t, app, "client", "add",
		"--code", "NZ-101", "--name", "Acme Ltd",
		"--vat-quarter-group", "1_4_7_10")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "client NZ-101 created")

	out.Reset()
	require.NoError(t, execute(t, app, "client", "list"))
	assert.Contains(t, out.String(), "Acme Ltd")
	assert.Contains(t, out.String(), "1_4_7_10")
}

func TestClientAdd_BadYearEnd(t *testing.T) {
	app, _ := newTestApp(t)

	err := execute(t, app, "client", "add",
		"--code", "NZ-102", "--name", "Bad Ltd", "--year-end", "13-40")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year end")
}

func TestObligationLifecycleThroughCommands(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, execute(t, app, "client", "add",
		"--code", "NZ-101", "--name", "Acme Ltd",
		"--vat-quarter-group", "1_4_7_10"))

	clients, err := app.Clients.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	clientID := clients[0].ID

	out.Reset()
	require.NoError(t, execute(t, app, "obligation", "create", clientID,
		"--kind", "vat_return", "--ref", "2024-02-15"))
	assert.Contains(t, out.String(), "period 2024-02-01 to 2024-04-30")
	assert.Contains(t, out.String(), "due 2024-05-31")

	obls, err := app.Obligations.ListByClient(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, obls, 1)

	// Promote past the period end, then walk one stage by hand.
	out.Reset()
	require.NoError(t, execute(t, app, "run", "promote", "--now", "2024-05-01"))
	assert.Contains(t, out.String(), "promoted 1 obligation(s)")

	out.Reset()
	require.NoError(t, execute(t, app, "obligation", "transition", obls[0].ID, "paperwork_chased",
		"--actor-id", "staff-1", "--actor-name", "Sam", "--note", "first chase sent"))
	assert.Contains(t, out.String(), "now in stage paperwork_chased")

	out.Reset()
	require.NoError(t, execute(t, app, "obligation", "show", obls[0].ID))
	assert.Contains(t, out.String(), "paperwork_chased")
	assert.Contains(t, out.String(), "first chase sent")
}

func TestTransition_FilingConfirmationHint(t *testing.T) {
	app, _ := newTestApp(t)

	require.NoError(t, execute(t, app, "client", "add",
		"--code", "NZ-101", "--name", "Acme Ltd",
		"--vat-quarter-group", "1_4_7_10"))
	clients, err := app.Clients.List(context.Background(), true)
	require.NoError(t, err)
	clientID := clients[0].ID

	require.NoError(t, execute(t, app, "obligation", "create", clientID,
		"--kind", "vat_return", "--ref", "2024-02-15"))
	obls, err := app.Obligations.ListByClient(context.Background(), clientID)
	require.NoError(t, err)

	require.NoError(t, execute(t, app, "run", "promote", "--now", "2024-05-01"))
	for _, stage := range []string{"paperwork_chased", "paperwork_received", "work_in_progress", "review_pending_manager", "sent_to_client", "client_approved"} {
		require.NoError(t, execute(t, app, "obligation", "transition", obls[0].ID, stage,
			"--actor-id", "staff-1", "--actor-name", "Sam"))
	}

	err = execute(t, app, "obligation", "transition", obls[0].ID, "filed",
		"--actor-id", "staff-1", "--actor-name", "Sam")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--confirm-filing")

	require.NoError(t, execute(t, app, "obligation", "transition", obls[0].ID, "filed",
		"--actor-id", "staff-1", "--actor-name", "Sam", "--confirm-filing"))
}

func TestRunSchedulerCommands(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, execute(t, app, "reviewer", "add", "--name", "Sam"))

	require.NoError(t, execute(t, app, "client", "add",
		"--code", "NZ-101", "--name", "Acme Ltd",
		"--vat-quarter-group", "1_4_7_10"))
	clients, err := app.Clients.List(context.Background(), true)
	require.NoError(t, err)
	require.NoError(t, execute(t, app, "obligation", "create", clients[0].ID,
		"--kind", "vat_return", "--ref", "2024-02-15"))

	out.Reset()
	require.NoError(t, execute(t, app, "run", "promote", "--now", "2024-05-01"))
	assert.Contains(t, out.String(), "promoted 1")

	// May is the filing month for the quarter ending 30 Apr.
	out.Reset()
	require.NoError(t, execute(t, app, "run", "assign", "--now", "2024-05-02"))
	assert.Contains(t, out.String(), "assigned 1")

	out.Reset()
	require.NoError(t, execute(t, app, "run", "rollover", "--now", "2024-05-02"))
	assert.Contains(t, out.String(), "created 0 successor(s)")
}

func TestParseNow(t *testing.T) {
	d, err := parseNow("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = parseNow("2024-05-01T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, d.Hour())

	_, err = parseNow("yesterday")
	require.Error(t, err)

	d, err = parseNow("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), d, time.Minute)

	_, err = parseDate("01/02/2024")
	require.Error(t, err)
}
