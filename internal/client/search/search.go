// Package search filters and orders the in-memory job list: free-text
// query on title and company, multi-select facets, salary buckets and
// sorting.
package search

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/feed"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SalaryRange is one of the fixed salary buckets.
type SalaryRange string

const (
	RangeAll       SalaryRange = "All"
	RangeUnder50k  SalaryRange = "Under $50k"
	Range50to100k  SalaryRange = "$50k - $100k"
	Range100to150k SalaryRange = "$100k - $150k"
	Range150to200k SalaryRange = "$150k - $200k"
	RangeOver200k  SalaryRange = "Over $200k"
)

// SalaryRanges lists the buckets in display order.
var SalaryRanges = []SalaryRange{RangeAll, RangeUnder50k, Range50to100k, Range100to150k, Range150to200k, RangeOver200k}

var rangeAliases = map[string]SalaryRange{
	"all":      RangeAll,
	"<50k":     RangeUnder50k,
	"50-100k":  Range50to100k,
	"100-150k": Range100to150k,
	"150-200k": Range150to200k,
	">200k":    RangeOver200k,
}

// ParseSalaryRange accepts a bucket label or its short alias ("<50k",
// "50-100k", "100-150k", "150-200k", ">200k", "all"), case-insensitively.
func ParseSalaryRange(s string) (SalaryRange, error) {
	s = strings.TrimSpace(s)
	if r, ok := rangeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}
	for _, r := range SalaryRanges {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown salary range %q", s)
}

func (r SalaryRange) contains(amount int) bool {
	switch r {
	case RangeUnder50k:
		return amount < 50_000
	case Range50to100k:
		return amount >= 50_000 && amount < 100_000
	case Range100to150k:
		return amount >= 100_000 && amount < 150_000
	case Range150to200k:
		return amount >= 150_000 && amount < 200_000
	case RangeOver200k:
		return amount >= 200_000
	default:
		return true
	}
}

// SortKey selects the ordering of results.
type SortKey string

const (
	SortNone    SortKey = ""
	SortTitle   SortKey = "title"
	SortCompany SortKey = "company"
	SortSalary  SortKey = "salary"
)

// ParseSortKey accepts "title", "company", "salary" or "none".
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortTitle, SortCompany, SortSalary:
		return k, nil
	case "none", SortNone:
		return SortNone, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Criteria describes one search. Empty facets do not filter.
type Criteria struct {
	Query       string
	JobTypes    []string
	WorkModels  []string
	Seniorities []string
	Salary      SalaryRange
	Sort        SortKey
	Descending  bool
}

// ActiveFilters counts the facets that narrow the result, not counting the
// query.
func (c Criteria) ActiveFilters() int {
	n := len(c.JobTypes) + len(c.WorkModels) + len(c.Seniorities)
	if c.Salary != "" && c.Salary != RangeAll {
		n++
	}
	return n
}

// Apply returns the jobs matching c, ordered by c.Sort. With SortNone the
// feed order is kept. The input is not modified.
func Apply(jobs []models.JobSnapshot, c Criteria) []models.JobSnapshot {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]models.JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		if query != "" &&
			!strings.Contains(strings.ToLower(j.Title), query) &&
			!strings.Contains(strings.ToLower(j.Company), query) {
			continue
		}
		if !facet(c.JobTypes, j.JobType) || !facet(c.WorkModels, j.WorkModel) || !facet(c.Seniorities, j.Seniority) {
			continue
		}
		if c.Salary != "" && c.Salary != RangeAll {
			amount, ok := MinSalary(j.Salary)
			if !ok || !c.Salary.contains(amount) {
				continue
			}
		}
		out = append(out, j)
	}

	sortJobs(out, c.Sort, c.Descending)
	return out
}

func facet(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	return slices.ContainsFunc(selected, func(s string) bool {
		return strings.EqualFold(s, value)
	})
}

var (
	firstNumber = regexp.MustCompile(`\d+`)
	thousandsK  = regexp.MustCompile(`\d\s*[kK]\b`)
)

// MinSalary extracts the lower bound from a display salary such as
// "USD 50,000 - 80,000", "$50k+" or "Up to € 80,000". Amounts written in
// thousands ("50k", or any first number below 1000) are scaled up.
func MinSalary(display string) (int, bool) {
	if display == "" || display == feed.SalaryNotSpecified {
		return 0, false
	}
	s := strings.ReplaceAll(display, ",", "")
	digits := firstNumber.FindString(s)
	if digits == "" {
		return 0, false
	}
	amount, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if thousandsK.MatchString(s) {
		amount *= 1000
	}
	if amount < 1000 {
		amount *= 1000
	}
	return amount, true
}

// sortJobs orders jobs in place. Jobs without a parsable salary stay last
// when sorting by salary, in either direction.
func sortJobs(jobs []models.JobSnapshot, key SortKey, desc bool) {
	if key == SortNone {
		return
	}
	col := collate.New(language.English, collate.IgnoreCase, collate.Loose)
	order := func(r int) int {
		if desc {
			return -r
		}
		return r
	}

	slices.SortStableFunc(jobs, func(a, b models.JobSnapshot) int {
		switch key {
		case SortTitle:
			return order(col.CompareString(a.Title, b.Title))
		case SortCompany:
			return order(col.CompareString(a.Company, b.Company))
		case SortSalary:
			sa, okA := MinSalary(a.Salary)
			sb, okB := MinSalary(b.Salary)
			switch {
			case !okA && !okB:
				return 0
			case !okA:
				return 1
			case !okB:
				return -1
			}
			return order(cmp.Compare(sa, sb))
		}
		return 0
	})
}
