package models

// JobSnapshot is a normalized job posting as shown to the user and as
// cached inside saved-job entries.
type JobSnapshot struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	CompanyLogo string   `json:"companyLogo,omitempty"`
	JobType     string   `json:"jobType"`
	WorkModel   string   `json:"workModel"`
	Seniority   string   `json:"seniority"`
	Salary      string   `json:"salary"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	ApplyURL    string   `json:"applyUrl"`
	Source      string   `json:"source"`
}

// Clone returns a copy of j that shares no slices with it.
func (j JobSnapshot) Clone() JobSnapshot {
	if j.Tags != nil {
		j.Tags = append([]string(nil), j.Tags...)
	}
	return j
}

// SavedJobEntry is a job bookmarked by one user.
type SavedJobEntry struct {
	OwnerUserID string      `json:"ownerUserId"`
	Job         JobSnapshot `json:"job"`
}
