package feed

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"github.com/goccy/go-json"
)

// SourceName tags every snapshot produced by this feed.
const SourceName = "Empllo"

// rawJob mirrors one record of the remote feed. Every field is optional.
type rawJob struct {
	Title          flexString  `json:"title"`
	CompanyName    flexString  `json:"companyName"`
	CompanyLogo    onlyString  `json:"companyLogo"`
	JobType        flexString  `json:"jobType"`
	WorkModel      flexString  `json:"workModel"`
	SeniorityLevel flexString  `json:"seniorityLevel"`
	MinSalary      flexNumber  `json:"minSalary"`
	MaxSalary      flexNumber  `json:"maxSalary"`
	Currency       onlyString  `json:"currency"`
	Locations      flexStrings `json:"locations"`
	Tags           flexStrings `json:"tags"`
	URL            onlyString  `json:"url"`
}

// flexString accepts a string, a non-zero number or true, rendered as text.
// Other values decode as empty so that the field's default applies.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = ""
		return nil
	}
	switch v := raw.(type) {
	case string:
		*s = flexString(v)
	case float64:
		if v != 0 {
			*s = flexString(strconv.FormatFloat(v, 'f', -1, 64))
		}
	case bool:
		if v {
			*s = "true"
		}
	default:
		*s = ""
	}
	return nil
}

// onlyString keeps JSON strings and treats every other value as absent.
type onlyString string

func (s *onlyString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = onlyString(v)
	return nil
}

// flexNumber accepts a JSON number or a numeric string; anything else
// decodes as absent.
type flexNumber struct {
	v *float64
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch value := raw.(type) {
	case float64:
		n.v = &value
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			n.v = &f
		}
	}
	return nil
}

// flexStrings accepts an array of scalars; a non-array decodes as empty.
type flexStrings []string

func (s *flexStrings) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = nil
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case nil:
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	*s = out
	return nil
}

type envelope struct {
	Jobs json.RawMessage `json:"jobs"`
}

// Parse decodes a feed body into normalized snapshots.
//
// A body that is not a JSON object, or has no "jobs" array, yields an empty
// list together with an error wrapping common.ErrMalformedFeed. Individual
// records that fail to decode are skipped and counted in skipped; the
// remaining records keep their original positions for id derivation.
func Parse(body []byte) (jobs []models.JobSnapshot, skipped int, err error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return []models.JobSnapshot{}, 0, fmt.Errorf("%w: %w", common.ErrMalformedFeed, err)
	}

	var records []json.RawMessage
	raw := bytes.TrimSpace(env.Jobs)
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &records) != nil {
		return []models.JobSnapshot{}, 0, fmt.Errorf("%w: missing jobs array", common.ErrMalformedFeed)
	}

	jobs = make([]models.JobSnapshot, 0, len(records))
	for i, rec := range records {
		var r rawJob
		if err := json.Unmarshal(rec, &r); err != nil || string(rec) == "null" {
			skipped++
			continue
		}
		jobs = append(jobs, normalize(r, i))
	}
	return jobs, skipped, nil
}

func normalize(r rawJob, index int) models.JobSnapshot {
	location := "Remote"
	if len(r.Locations) > 0 {
		location = strings.Join(r.Locations, ", ")
	}

	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}

	title, company := string(r.Title), string(r.CompanyName)
	jobType, workModel, seniority := string(r.JobType), string(r.WorkModel), string(r.SeniorityLevel)

	description := fmt.Sprintf("%s role at %s. This is a %s %s position (%s level) based in %s.",
		orDefault(title, "Position"),
		orDefault(company, "Company"),
		orDefault(jobType, "full time"),
		orDefault(workModel, "remote"),
		orDefault(seniority, "mid"),
		location,
	)

	return models.JobSnapshot{
		ID:          StableJobID(string(r.URL), company, title, index),
		Title:       orDefault(title, "No Title"),
		Company:     orDefault(company, "No Company"),
		CompanyLogo: string(r.CompanyLogo),
		JobType:     orDefault(jobType, "Not specified"),
		WorkModel:   orDefault(workModel, "Not specified"),
		Seniority:   orDefault(seniority, "Not specified"),
		Salary:      FormatSalary(r.MinSalary.v, r.MaxSalary.v, string(r.Currency)),
		Location:    location,
		Tags:        tags,
		Description: description,
		ApplyURL:    string(r.URL),
		Source:      SourceName,
	}
}
