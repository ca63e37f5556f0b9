package services

import (
	"bytes"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
)

// savedProbe distinguishes owned entries from the bare snapshots older
// clients stored.
type savedProbe struct {
	OwnerUserID string          `json:"ownerUserId"`
	Job         json.RawMessage `json:"job"`
}

// decodeSaved parses the saved-jobs collection. Items that cannot be
// decoded are returned verbatim in rest so that rewriting the collection
// does not lose them. changed reports that the result differs from raw:
// legacy snapshots were tagged with LegacyOwnerID, or duplicate and null
// items were dropped.
func decodeSaved(raw []byte) (p *partition[models.JobSnapshot], rest []json.RawMessage, changed bool, err error) {
	p = newPartition[models.JobSnapshot]()

	items, err := decodeItems(raw)
	if err != nil || items == nil {
		return p, nil, false, err
	}

	for _, item := range items {
		if isNull(item) {
			changed = true
			continue
		}
		var probe savedProbe
		if err := json.Unmarshal(item, &probe); err != nil {
			rest = append(rest, item)
			continue
		}

		var job models.JobSnapshot
		owner := probe.OwnerUserID
		body := item
		if len(probe.Job) > 0 && !isNull(probe.Job) {
			body = probe.Job
		} else {
			owner = ""
		}
		if err := json.Unmarshal(body, &job); err != nil || job.ID == "" {
			rest = append(rest, item)
			continue
		}
		if owner == "" {
			owner = LegacyOwnerID
			changed = true
		}
		if !p.add(owner, job.ID, job) {
			changed = true
		}
	}
	return p, rest, changed, nil
}

// encodeSaved writes the owned entries followed by the undecodable items
// kept from the last read.
func encodeSaved(p *partition[models.JobSnapshot], rest []json.RawMessage) ([]byte, error) {
	entries := make([]any, 0, p.size()+len(rest))
	p.each(func(owner, _ string, job models.JobSnapshot) {
		entries = append(entries, models.SavedJobEntry{OwnerUserID: owner, Job: job})
	})
	for _, item := range rest {
		entries = append(entries, item)
	}
	return json.Marshal(entries)
}

// decodeApplications parses the applications collection. Applications
// without an owner go to LegacyOwnerID, unknown statuses become pending and
// missing ids are generated; each of these sets changed. Undecodable items
// are returned in rest as decodeSaved does.
func decodeApplications(raw []byte, now func() time.Time) (p *partition[models.Application], rest []json.RawMessage, changed bool, err error) {
	p = newPartition[models.Application]()

	items, err := decodeItems(raw)
	if err != nil || items == nil {
		return p, nil, false, err
	}

	for _, item := range items {
		if isNull(item) {
			changed = true
			continue
		}
		var app models.Application
		if err := json.Unmarshal(item, &app); err != nil {
			rest = append(rest, item)
			continue
		}
		if app.OwnerUserID == "" {
			app.OwnerUserID = LegacyOwnerID
			changed = true
		}
		if !app.Status.Valid() {
			app.Status = models.StatusPending
			changed = true
		}
		if app.ID == "" {
			ts := app.AppliedAt
			if ts.IsZero() {
				ts = now()
			}
			app.ID = ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String()
			changed = true
		}
		if !p.add(app.OwnerUserID, app.ID, app) {
			changed = true
		}
	}
	return p, rest, changed, nil
}

func encodeApplications(p *partition[models.Application], rest []json.RawMessage) ([]byte, error) {
	apps := make([]any, 0, p.size()+len(rest))
	p.each(func(_, _ string, app models.Application) {
		apps = append(apps, app)
	})
	for _, item := range rest {
		apps = append(apps, item)
	}
	return json.Marshal(apps)
}

// decodeItems splits a stored JSON array. An absent or null value is an
// empty collection.
func decodeItems(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
