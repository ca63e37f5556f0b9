package cli

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/jobkeeper/internal/client/config"
	"github.com/dmitrijs2005/jobkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	jobs        []models.JobSnapshot
	err         error
	calls       int
	invalidated int
}

func (f *fakeFeed) Fetch(context.Context) ([]models.JobSnapshot, error) {
	f.calls++
	return f.jobs, f.err
}

func (f *fakeFeed) Invalidate() { f.invalidated++ }

func sampleJobs() []models.JobSnapshot {
	return []models.JobSnapshot{
		{ID: "job-go", Title: "Senior Go Engineer", Company: "Acme", JobType: "Full-time", WorkModel: "Remote",
			Seniority: "Senior", Salary: "$120,000 - $150,000", Description: "Build services."},
		{ID: "job-ux", Title: "Product Designer", Company: "Blue Inc", JobType: "Contract", WorkModel: "Hybrid",
			Seniority: "Mid", Salary: "$60k - $80k"},
		{ID: "job-jr", Title: "Junior Developer", Company: "Zeta", JobType: "Full-time", WorkModel: "On-site",
			Seniority: "Junior", Salary: "Not specified"},
	}
}

// newTestApp builds an App over a temp-file store and a fake feed. Input
// for prompts is read from the string passed to withInput.
func newTestApp(t *testing.T) (*App, *fakeFeed, *bytes.Buffer) {
	t.Helper()
	return newTestAppAt(t, filepath.Join(t.TempDir(), "jobkeeper.db"))
}

func newTestAppAt(t *testing.T, path string) (*App, *fakeFeed, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, path)
	require.NoError(t, err)

	origTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = origTerm })

	m := metrics.New()
	logger := logging.Nop()
	f := &fakeFeed{jobs: sampleJobs()}
	out := &bytes.Buffer{}
	a := &App{
		config:      &config.Config{},
		logger:      logger,
		metrics:     m,
		closer:      st,
		authService: services.NewAuthService(st, logger, m),
		ledger:      services.NewLedger(st, logger, m),
		feed:        f,
		validate:    newValidator(),
		reader:      bufio.NewReader(strings.NewReader("")),
		out:         out,
	}
	t.Cleanup(a.Close)

	runCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	a.start(runCtx)
	return a, f, out
}

func (a *App) withInput(lines ...string) *App {
	a.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	return a
}

func register(t *testing.T, a *App, name, email string) {
	t.Helper()
	require.NoError(t, a.withInput(name, email, "secret1", "secret1").Register(context.Background()))
}

func TestStart_RestoresSessionAndActiveUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobkeeper.db")

	first, _, _ := newTestAppAt(t, path)
	register(t, first, "Ann", "ann@example.com")
	require.NoError(t, first.Fetch(context.Background(), nil))
	require.NoError(t, first.Save(context.Background(), []string{"job-go"}))
	first.Close()

	second, _, _ := newTestAppAt(t, path)
	assert.True(t, second.isLoggedIn())
	assert.Equal(t, "Ann", second.status())
	assert.True(t, second.ledger.IsJobSaved("job-go"))
}

func TestStatus_Guest(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "guest", a.status())
}
