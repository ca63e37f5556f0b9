package models

import "time"

// ApplicationStatus is the review state of a submitted application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application records a user's submitted interest in a job.
//
// The owner is serialized as "userId" so that collections written by older
// clients decode unchanged.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	JobTitle    string            `json:"jobTitle"`
	Company     string            `json:"company"`
	CompanyLogo string            `json:"companyLogo,omitempty"`
	Status      ApplicationStatus `json:"status"`
	OwnerUserID string            `json:"userId"`
	AppliedAt   time.Time         `json:"appliedAt"`
}

// ApplicationInput is what a caller supplies to create an Application; the
// id, status and timestamp are assigned by the ledger.
type ApplicationInput struct {
	JobID       string
	JobTitle    string
	Company     string
	CompanyLogo string
	OwnerUserID string
}
