package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
)

// Apply collects an application form for a job and records it for the
// signed-in user. Name and email default to the account's values.
func (a *App) Apply(ctx context.Context, args []string) error {
	id := a.authService.CurrentIdentity()
	if id == nil {
		return common.ErrNotAuthenticated
	}
	if len(args) != 1 {
		return usage("apply <number|job id>")
	}
	job, err := a.resolveJob(args[0])
	if err != nil {
		return err
	}
	if a.ledger.IsJobApplied(job.ID) {
		return common.ErrAlreadyApplied
	}

	a.printf("Applying for %q at %s\n", job.Title, job.Company)
	form := applicationForm{}
	if form.Name, err = a.promptDefault("Full name", id.Name); err != nil {
		return err
	}
	if form.Email, err = a.promptDefault("Email", id.Email); err != nil {
		return err
	}
	if form.Phone, err = getSimpleText(a.reader, "Contact number", a.out); err != nil {
		return err
	}
	if form.Reason, err = getMultiline(a.reader, "Why are you interested in this role?", a.out); err != nil {
		return err
	}
	if err := validateForm(a.validate, &form); err != nil {
		return err
	}

	app, err := a.ledger.SubmitApplication(ctx, models.ApplicationInput{
		JobID:       job.ID,
		JobTitle:    job.Title,
		Company:     job.Company,
		CompanyLogo: job.CompanyLogo,
		OwnerUserID: id.ID,
	})
	if err != nil {
		return err
	}
	a.printf("Application sent for %q (status: %s).\n", app.JobTitle, app.Status)
	return nil
}

// Applied lists the signed-in user's applications.
func (a *App) Applied(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	a.appListing = a.ledger.Applications()
	if len(a.appListing) == 0 {
		a.println("You have not applied for any jobs yet.")
		return nil
	}
	a.printApplications(a.appListing)
	return nil
}

// Cancel withdraws an application, given its position in the last
// "applied" list or its id.
func (a *App) Cancel(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	if len(args) != 1 {
		return usage("cancel <number|application id>")
	}

	appID := args[0]
	if n, err := strconv.Atoi(appID); err == nil {
		if n < 1 || n > len(a.appListing) {
			return fmt.Errorf("no application #%d in the last list: %w", n, common.ErrNotFound)
		}
		appID = a.appListing[n-1].ID
	}

	if !a.ledger.RemoveApplication(ctx, appID) {
		return fmt.Errorf("application %q: %w", appID, common.ErrNotFound)
	}
	a.appListing = nil
	a.println("Application withdrawn.")
	return nil
}

// ClearApplied withdraws every application of the signed-in user after
// asking for confirmation.
func (a *App) ClearApplied(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	n := len(a.ledger.Applications())
	if n == 0 {
		a.println("You have not applied for any jobs yet.")
		return nil
	}
	ok, err := a.confirm(fmt.Sprintf("Withdraw all %d applications?", n))
	if err != nil || !ok {
		return err
	}
	a.printf("Withdrew %d applications.\n", a.ledger.ClearApplications(ctx))
	a.appListing = nil
	return nil
}

func (a *App) promptDefault(prompt, def string) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}
