package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/search"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
)

// invalidator is implemented by fetchers that cache responses.
type invalidator interface {
	Invalidate()
}

// Fetch loads the job feed and hands it to the ledger. With the "force"
// argument any cached response is dropped first.
func (a *App) Fetch(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "force" {
		if inv, ok := a.feed.(invalidator); ok {
			inv.Invalidate()
		}
	}

	jobs, err := a.feed.Fetch(ctx)
	if err != nil {
		return err
	}
	a.ledger.SetJobs(ctx, jobs)
	a.listing = nil

	if len(jobs) == 0 {
		a.println("No jobs available right now.")
		return nil
	}
	a.printf("Loaded %d jobs. Type 'jobs' to list them.\n", len(jobs))
	return nil
}

// Jobs lists the fetched jobs matching the current search criteria.
func (a *App) Jobs(ctx context.Context) error {
	all := a.ledger.Jobs()
	a.listing = search.Apply(all, a.criteria)

	if len(a.listing) == 0 {
		if len(all) == 0 {
			a.println("No jobs loaded. Try 'fetch'.")
		} else {
			a.println("No jobs match your search. Try 'filter clear' or 'search' with no text.")
		}
		return nil
	}

	a.printJobs(a.listing)
	a.printf("Showing %d of %d jobs%s\n", len(a.listing), len(all), a.criteriaSummary())
	return nil
}

// Search sets the free-text query and lists the result. No arguments
// clear the query.
func (a *App) Search(ctx context.Context, args []string) error {
	a.criteria.Query = strings.Join(args, " ")
	return a.Jobs(ctx)
}

// Filter sets facet filters given as key=value[,value...] pairs. Keys are
// type, model, seniority and salary. "filter clear" removes all of them;
// no arguments print the current filters.
func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Filters:%s\n", a.criteriaSummary())
		return nil
	}
	if len(args) == 1 && args[0] == "clear" {
		a.criteria.JobTypes, a.criteria.WorkModels, a.criteria.Seniorities = nil, nil, nil
		a.criteria.Salary = search.RangeAll
		return a.Jobs(ctx)
	}

	next := a.criteria
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return usage("filter type=Full-time,Contract model=Remote seniority=Senior salary=100-150k | filter clear")
		}
		values := splitList(value)
		switch strings.ToLower(key) {
		case "type":
			next.JobTypes = values
		case "model":
			next.WorkModels = values
		case "seniority":
			next.Seniorities = values
		case "salary":
			r, err := search.ParseSalaryRange(value)
			if err != nil {
				return err
			}
			next.Salary = r
		default:
			return fmt.Errorf("unknown filter %q, use type, model, seniority or salary", key)
		}
	}
	a.criteria = next
	return a.Jobs(ctx)
}

// Sort orders the listing by title, company or salary; "desc" reverses it.
func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("sort title|company|salary|none [desc]")
	}
	key, err := search.ParseSortKey(args[0])
	if err != nil {
		return err
	}
	a.criteria.Sort = key
	a.criteria.Descending = len(args) > 1 && strings.EqualFold(args[1], "desc")
	return a.Jobs(ctx)
}

// Show prints the details of one job.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <number|job id>")
	}
	job, err := a.resolveJob(args[0])
	if err != nil {
		return err
	}
	a.printJob(job)
	return nil
}

// resolveJob accepts a 1-based position in the last listing or a job id.
// Ids are looked up in the fetched jobs first and then in the active
// user's saved jobs, so saved postings stay reachable after they leave
// the feed.
func (a *App) resolveJob(ref string) (models.JobSnapshot, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(a.listing) {
			return models.JobSnapshot{}, fmt.Errorf("no job #%d in the last list: %w", n, common.ErrNotFound)
		}
		return a.listing[n-1], nil
	}
	for _, j := range a.ledger.Jobs() {
		if j.ID == ref {
			return j, nil
		}
	}
	if j, ok := a.ledger.Active().SavedJob(ref); ok {
		return j, nil
	}
	return models.JobSnapshot{}, fmt.Errorf("job %q: %w", ref, common.ErrNotFound)
}

func (a *App) criteriaSummary() string {
	c := a.criteria
	var parts []string
	if c.Query != "" {
		parts = append(parts, fmt.Sprintf("search=%q", c.Query))
	}
	if len(c.JobTypes) > 0 {
		parts = append(parts, "type="+strings.Join(c.JobTypes, ","))
	}
	if len(c.WorkModels) > 0 {
		parts = append(parts, "model="+strings.Join(c.WorkModels, ","))
	}
	if len(c.Seniorities) > 0 {
		parts = append(parts, "seniority="+strings.Join(c.Seniorities, ","))
	}
	if c.Salary != "" && c.Salary != search.RangeAll {
		parts = append(parts, "salary="+string(c.Salary))
	}
	if c.Sort != search.SortNone {
		s := "sort=" + string(c.Sort)
		if c.Descending {
			s += " desc"
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return " (no filters)"
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
