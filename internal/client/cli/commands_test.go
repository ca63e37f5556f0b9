package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/jobkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingIDs(a *App) []string {
	ids := make([]string, 0, len(a.listing))
	for _, j := range a.listing {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	a, f, out := newTestApp(t)

	require.NoError(t, a.Fetch(ctx, nil))
	assert.Contains(t, out.String(), "Loaded 3 jobs")
	assert.Len(t, a.ledger.Jobs(), 3)
	assert.Zero(t, f.invalidated)

	require.NoError(t, a.Fetch(ctx, []string{"force"}))
	assert.Equal(t, 1, f.invalidated)

	f.jobs = nil
	out.Reset()
	require.NoError(t, a.Fetch(ctx, nil))
	assert.Contains(t, out.String(), "No jobs available right now.")
	assert.Empty(t, a.ledger.Jobs())

	f.err = common.ErrFeedUnavailable
	err := a.Fetch(ctx, nil)
	require.ErrorIs(t, err, common.ErrFeedUnavailable)
	assert.Equal(t, "Could not load jobs, the feed is unavailable. Try 'fetch' again.", userMessage(err))
}

func TestFetch_RefreshesSavedSnapshots(t *testing.T) {
	ctx := context.Background()
	a, f, _ := newTestApp(t)
	register(t, a, "Ann", "ann@example.com")
	require.NoError(t, a.Fetch(ctx, nil))
	require.NoError(t, a.Save(ctx, []string{"job-go"}))

	f.jobs = sampleJobs()
	f.jobs[0].Salary = "$130,000"
	require.NoError(t, a.Fetch(ctx, nil))

	saved := a.ledger.SavedJobs()
	require.Len(t, saved, 1)
	assert.Equal(t, "$130,000", saved[0].Salary)
}

func TestJobs_SearchFilterSort(t *testing.T) {
	ctx := context.Background()
	a, _, out := newTestApp(t)

	require.NoError(t, a.Jobs(ctx))
	assert.Contains(t, out.String(), "No jobs loaded")

	require.NoError(t, a.Fetch(ctx, nil))
	require.NoError(t, a.Jobs(ctx))
	assert.Equal(t, []string{"job-go", "job-ux", "job-jr"}, listingIDs(a))

	require.NoError(t, a.Search(ctx, []string{"GO"}))
	assert.Equal(t, []string{"job-go"}, listingIDs(a))

	require.NoError(t, a.Search(ctx, nil))
	require.NoError(t, a.Filter(ctx, []string{"type=full-time"}))
	assert.Equal(t, []string{"job-go", "job-jr"}, listingIDs(a))

	require.NoError(t, a.Filter(ctx, []string{"salary=100-150k"}))
	assert.Equal(t, []string{"job-go"}, listingIDs(a))

	out.Reset()
	require.NoError(t, a.Filter(ctx, nil))
	assert.Contains(t, out.String(), "type=full-time")
	assert.Contains(t, out.String(), "salary=$100k - $150k")

	require.NoError(t, a.Filter(ctx, []string{"clear"}))
	require.NoError(t, a.Sort(ctx, []string{"salary", "desc"}))
	assert.Equal(t, []string{"job-go", "job-ux", "job-jr"}, listingIDs(a))

	require.NoError(t, a.Sort(ctx, []string{"company"}))
	assert.Equal(t, []string{"job-go", "job-ux", "job-jr"}, listingIDs(a))

	require.NoError(t, a.Sort(ctx, []string{"title"}))
	assert.Equal(t, []string{"job-jr", "job-ux", "job-go"}, listingIDs(a))

	require.NoError(t, a.Filter(ctx, []string{"model=Mars"}))
	assert.Empty(t, a.listing)
}

func TestFilter_Errors(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)

	require.ErrorIs(t, a.Filter(ctx, []string{"remote"}), errUsage)
	require.Error(t, a.Filter(ctx, []string{"color=red"}))
	require.Error(t, a.Filter(ctx, []string{"salary=lots"}))
	require.ErrorIs(t, a.Sort(ctx, nil), errUsage)
	require.Error(t, a.Sort(ctx, []string{"date"}))
}

func TestShow(t *testing.T) {
	ctx := context.Background()
	a, _, out := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))
	require.NoError(t, a.Jobs(ctx))

	out.Reset()
	require.NoError(t, a.Show(ctx, []string{"1"}))
	assert.Contains(t, out.String(), "Senior Go Engineer")
	assert.Contains(t, out.String(), "Build services.")

	out.Reset()
	require.NoError(t, a.Show(ctx, []string{"job-ux"}))
	assert.Contains(t, out.String(), "Product Designer")

	require.ErrorIs(t, a.Show(ctx, []string{"9"}), common.ErrNotFound)
	require.ErrorIs(t, a.Show(ctx, []string{"job-missing"}), common.ErrNotFound)
	require.ErrorIs(t, a.Show(ctx, nil), errUsage)
}

func TestSaveAndUnsave(t *testing.T) {
	ctx := context.Background()
	a, f, out := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))
	require.NoError(t, a.Jobs(ctx))

	require.ErrorIs(t, a.Save(ctx, []string{"1"}), common.ErrNotAuthenticated)

	register(t, a, "Ann", "ann@example.com")
	require.NoError(t, a.Save(ctx, []string{"1"}))
	assert.True(t, a.ledger.IsJobSaved("job-go"))

	out.Reset()
	require.NoError(t, a.Save(ctx, []string{"job-go"}))
	assert.Contains(t, out.String(), "already saved")
	assert.Len(t, a.ledger.SavedJobs(), 1)

	// saved jobs stay reachable by id after they leave the feed
	f.jobs = f.jobs[1:]
	require.NoError(t, a.Fetch(ctx, nil))
	require.NoError(t, a.Saved(ctx))
	assert.Equal(t, []string{"job-go"}, listingIDs(a))
	require.NoError(t, a.Show(ctx, []string{"job-go"}))

	require.NoError(t, a.Unsave(ctx, []string{"1"}))
	assert.False(t, a.ledger.IsJobSaved("job-go"))
	require.ErrorIs(t, a.Unsave(ctx, []string{"job-ux"}), common.ErrNotFound)

	out.Reset()
	require.NoError(t, a.Saved(ctx))
	assert.Contains(t, out.String(), "no saved jobs")
}

func TestSavedJobsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))

	register(t, a, "Ann", "ann@example.com")
	require.NoError(t, a.Save(ctx, []string{"job-go"}))
	require.NoError(t, a.Logout(ctx))

	register(t, a, "Bob", "bob@example.com")
	assert.Empty(t, a.ledger.SavedJobs())
	require.NoError(t, a.Save(ctx, []string{"job-ux"}))

	require.NoError(t, a.withInput("y").ClearSaved(ctx))
	assert.Empty(t, a.ledger.SavedJobs())
	require.NoError(t, a.Logout(ctx))

	require.NoError(t, a.withInput("ann@example.com", "secret1").Login(ctx))
	saved := a.ledger.SavedJobs()
	require.Len(t, saved, 1)
	assert.Equal(t, "job-go", saved[0].ID)
}

func TestClearSaved_RequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))
	register(t, a, "Ann", "ann@example.com")
	require.NoError(t, a.Save(ctx, []string{"job-go"}))

	require.NoError(t, a.withInput("n").ClearSaved(ctx))
	assert.Len(t, a.ledger.SavedJobs(), 1)

	require.NoError(t, a.withInput("yes").ClearSaved(ctx))
	assert.Empty(t, a.ledger.SavedJobs())
}

const reason = "I have shipped Go services for five years."

func TestApply(t *testing.T) {
	ctx := context.Background()
	a, _, out := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))
	require.NoError(t, a.Jobs(ctx))

	require.ErrorIs(t, a.Apply(ctx, []string{"1"}), common.ErrNotAuthenticated)

	register(t, a, "Ann", "ann@example.com")
	// empty name and email fall back to the account's values
	require.NoError(t, a.withInput("", "", "+1 555 123 4567", reason, "").Apply(ctx, []string{"1"}))
	assert.Contains(t, out.String(), "Full name [Ann]")
	assert.True(t, a.ledger.IsJobApplied("job-go"))

	apps := a.ledger.Applications()
	require.Len(t, apps, 1)
	assert.Equal(t, "Senior Go Engineer", apps[0].JobTitle)
	assert.Equal(t, models.StatusPending, apps[0].Status)
	assert.Equal(t, a.ledger.ActiveUser(), apps[0].OwnerUserID)

	err := a.withInput("", "", "+1 555 123 4567", reason, "").Apply(ctx, []string{"job-go"})
	require.ErrorIs(t, err, common.ErrAlreadyApplied)
	assert.Len(t, a.ledger.Applications(), 1)
}

func TestApply_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))
	register(t, a, "Ann", "ann@example.com")

	err := a.withInput("", "", "call me", "too short", "").Apply(ctx, []string{"job-go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter a valid phone number")
	assert.Contains(t, err.Error(), "Reason must be at least 20 characters")
	assert.False(t, a.ledger.IsJobApplied("job-go"))
}

func TestAppliedCancelAndClear(t *testing.T) {
	ctx := context.Background()
	a, _, out := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))
	register(t, a, "Ann", "ann@example.com")

	require.ErrorIs(t, a.Cancel(ctx, []string{"1"}), common.ErrNotFound)

	for _, id := range []string{"job-go", "job-ux"} {
		require.NoError(t, a.withInput("", "", "5551234567", reason, "").Apply(ctx, []string{id}))
	}

	out.Reset()
	require.NoError(t, a.Applied(ctx))
	assert.Contains(t, out.String(), "Senior Go Engineer")
	assert.Contains(t, out.String(), "pending")
	require.Len(t, a.appListing, 2)

	target := a.appListing[0].ID
	require.NoError(t, a.Cancel(ctx, []string{"1"}))
	for _, app := range a.ledger.Applications() {
		assert.NotEqual(t, target, app.ID)
	}
	assert.Len(t, a.ledger.Applications(), 1)

	require.NoError(t, a.withInput("y").ClearApplied(ctx))
	assert.Empty(t, a.ledger.Applications())

	out.Reset()
	require.NoError(t, a.Applied(ctx))
	assert.Contains(t, out.String(), "not applied")
}

func TestCancel_OtherUsersApplicationIsNotFound(t *testing.T) {
	ctx := context.Background()
	a, _, _ := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))

	register(t, a, "Ann", "ann@example.com")
	require.NoError(t, a.withInput("", "", "5551234567", reason, "").Apply(ctx, []string{"job-go"}))
	annApp := a.ledger.Applications()[0].ID
	require.NoError(t, a.Logout(ctx))

	register(t, a, "Bob", "bob@example.com")
	require.ErrorIs(t, a.Cancel(ctx, []string{annApp}), common.ErrNotFound)
	require.NoError(t, a.Logout(ctx))

	require.NoError(t, a.withInput("ann@example.com", "secret1").Login(ctx))
	assert.Len(t, a.ledger.Applications(), 1)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	a, _, out := newTestApp(t)
	require.NoError(t, a.Fetch(ctx, nil))
	register(t, a, "Ann", "ann@example.com")
	require.NoError(t, a.Save(ctx, []string{"job-go"}))

	a.metrics.FeedFetches.WithLabelValues(metrics.OutcomeError).Inc()

	out.Reset()
	require.NoError(t, a.Stats(ctx))
	assert.Contains(t, out.String(), "Jobs loaded:     3")
	assert.Contains(t, out.String(), "Saved jobs:      1")
	assert.Contains(t, out.String(), `auth_attempts_total{op="register",outcome="ok"} 1`)
	assert.Contains(t, out.String(), `feed_fetches_total{outcome="error"} 1`)
}
