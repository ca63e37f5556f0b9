package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/common"
)

// Save bookmarks a job for the signed-in user.
func (a *App) Save(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	if len(args) != 1 {
		return usage("save <number|job id>")
	}
	job, err := a.resolveJob(args[0])
	if err != nil {
		return err
	}

	if !a.ledger.AddJob(ctx, job) {
		a.printf("%q is already saved.\n", job.Title)
		return nil
	}
	a.printf("Saved %q.\n", job.Title)
	return nil
}

// Unsave removes a bookmark.
func (a *App) Unsave(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	if len(args) != 1 {
		return usage("unsave <number|job id>")
	}
	job, err := a.resolveJob(args[0])
	if err != nil {
		return err
	}

	if !a.ledger.RemoveJob(ctx, job.ID) {
		return fmt.Errorf("%q is not in your saved jobs: %w", job.Title, common.ErrNotFound)
	}
	a.printf("Removed %q from saved jobs.\n", job.Title)
	return nil
}

// Saved lists the signed-in user's saved jobs. Their positions replace the
// last listing, so "show 2" or "apply 2" refer to this list.
func (a *App) Saved(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	saved := a.ledger.SavedJobs()
	a.listing = saved
	if len(saved) == 0 {
		a.println("You have no saved jobs.")
		return nil
	}
	a.printJobs(saved)
	return nil
}

// ClearSaved removes every saved job of the signed-in user after asking
// for confirmation. Other users' bookmarks are not touched.
func (a *App) ClearSaved(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	n := len(a.ledger.SavedJobs())
	if n == 0 {
		a.println("You have no saved jobs.")
		return nil
	}
	ok, err := a.confirm(fmt.Sprintf("Remove all %d saved jobs?", n))
	if err != nil || !ok {
		return err
	}
	a.printf("Removed %d saved jobs.\n", a.ledger.ClearSavedJobs(ctx))
	a.listing = nil
	return nil
}

func (a *App) confirm(question string) (bool, error) {
	answer, err := getSimpleText(a.reader, question+" [y/N]", a.out)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
