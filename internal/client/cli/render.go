package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
)

// maxDescription caps the description printed by show.
const maxDescription = 1200

func (a *App) printJobs(jobs []models.JobSnapshot) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tCOMPANY\tTYPE\tMODEL\tSALARY\t")
	for i, j := range jobs {
		fmt.Fprintf(tw, "%d\t%s%s\t%s\t%s\t%s\t%s\t\n",
			i+1, a.marks(j.ID), truncate(j.Title, 48), truncate(j.Company, 28), j.JobType, j.WorkModel, j.Salary)
	}
	tw.Flush()
}

// marks flags jobs the active user saved (*) or applied for (✓).
func (a *App) marks(jobID string) string {
	var b strings.Builder
	if a.ledger.IsJobSaved(jobID) {
		b.WriteString("* ")
	}
	if a.ledger.IsJobApplied(jobID) {
		b.WriteString("✓ ")
	}
	return b.String()
}

func (a *App) printJob(j models.JobSnapshot) {
	a.printf("%s\n%s\n\n", j.Title, j.Company)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Id:\t%s\n", j.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", j.JobType)
	fmt.Fprintf(tw, "Work model:\t%s\n", j.WorkModel)
	fmt.Fprintf(tw, "Seniority:\t%s\n", j.Seniority)
	fmt.Fprintf(tw, "Salary:\t%s\n", j.Salary)
	fmt.Fprintf(tw, "Location:\t%s\n", j.Location)
	if len(j.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(j.Tags, ", "))
	}
	if j.ApplyURL != "" {
		fmt.Fprintf(tw, "Apply at:\t%s\n", j.ApplyURL)
	}
	if j.Source != "" {
		fmt.Fprintf(tw, "Source:\t%s\n", j.Source)
	}
	tw.Flush()

	if d := strings.TrimSpace(j.Description); d != "" {
		a.printf("\n%s\n", truncate(d, maxDescription))
	}
	if s := statusLine(a.ledger.IsJobSaved(j.ID), a.ledger.IsJobApplied(j.ID)); s != "" {
		a.printf("\n%s\n", s)
	}
}

func statusLine(saved, applied bool) string {
	switch {
	case saved && applied:
		return "Saved, applied."
	case saved:
		return "Saved."
	case applied:
		return "Applied."
	}
	return ""
}

func (a *App) printApplications(apps []models.Application) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tJOB\tCOMPANY\tSTATUS\tAPPLIED\t")
	for i, app := range apps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			i+1, truncate(app.JobTitle, 48), truncate(app.Company, 28), app.Status, app.AppliedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
