package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
)

// LegacyOwnerID owns records persisted before entries carried an owner.
const LegacyOwnerID = "legacy-user"

// DefaultSyncInterval is how often Watch re-reads the store when no
// interval is configured.
const DefaultSyncInterval = 2 * time.Second

// ErrLedgerNotLoaded is returned by Watch when Load has not completed.
var ErrLedgerNotLoaded = errors.New("ledger not loaded")

// Ledger keeps saved jobs and applications for every user, partitioned by
// owner id, and persists each kind as one flat collection.
//
// All mutations are implemented on UserView, which carries the acting owner
// explicitly. The Ledger methods of the same names act on the active user
// set by SetActiveUser and exist for callers that follow the session.
//
// Mutations update memory first and then rewrite the whole collection. A
// failed write is logged and counted; the in-memory change is kept. A
// collection that could not be read is never written until a later read
// succeeds, so a transient read error cannot wipe stored data.
type Ledger struct {
	store   store.Store
	logger  logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu          sync.Mutex
	loaded      bool
	active      string
	saved       *partition[models.JobSnapshot]
	apps        *partition[models.Application]
	jobs        []models.JobSnapshot
	lastWritten map[string][]byte
	suspended   map[string]bool
	// unreadable holds stored items of each collection that could not be
	// decoded; they are written back unchanged.
	unreadable  map[string][]json.RawMessage
}

// NewLedger returns an empty ledger over s. Call Load before use.
func NewLedger(s store.Store, logger logging.Logger, m *metrics.Metrics) *Ledger {
	return &Ledger{
		store:       s,
		logger:      logger.With("component", "ledger"),
		metrics:     m,
		now:         time.Now,
		saved:       newPartition[models.JobSnapshot](),
		apps:        newPartition[models.Application](),
		lastWritten: make(map[string][]byte),
		suspended:   make(map[string]bool),
		unreadable:  make(map[string][]json.RawMessage),
	}
}

// Load reads both collections, migrating records without an owner to
// LegacyOwnerID. A migrated collection is written back once. Read failures
// are returned joined; the affected collection starts empty and stays
// read-only until a later refresh succeeds.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	errSaved := l.reloadLocked(ctx, store.KeySavedJobs)
	errApps := l.reloadLocked(ctx, store.KeyApplications)
	l.loaded = true

	l.logger.Debug(ctx, "ledger loaded", "saved", l.saved.size(), "applications", l.apps.size())
	return errors.Join(errSaved, errApps)
}

// SetActiveUser switches which user the ambient methods act on. An empty id
// means nobody is logged in. Stored data is not touched.
func (l *Ledger) SetActiveUser(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = userID
}

// ActiveUser returns the id set by SetActiveUser.
func (l *Ledger) ActiveUser() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// ForUser returns a view acting on behalf of owner. An empty owner yields a
// view on which every mutation is a no-op and every query is empty.
func (l *Ledger) ForUser(owner string) UserView {
	return UserView{l: l, owner: owner}
}

// Active binds a view to the current active user.
func (l *Ledger) Active() UserView {
	return l.ForUser(l.ActiveUser())
}

func (l *Ledger) AddJob(ctx context.Context, job models.JobSnapshot) bool {
	return l.Active().AddJob(ctx, job)
}

func (l *Ledger) RemoveJob(ctx context.Context, jobID string) bool {
	return l.Active().RemoveJob(ctx, jobID)
}

func (l *Ledger) IsJobSaved(jobID string) bool {
	return l.Active().IsJobSaved(jobID)
}

// ApplyToJob records an application for in.OwnerUserID, or for the active
// user when the input names no owner. It does not check for an earlier
// application to the same job; see SubmitApplication.
func (l *Ledger) ApplyToJob(ctx context.Context, in models.ApplicationInput) (models.Application, bool) {
	return l.Active().ApplyToJob(ctx, in)
}

func (l *Ledger) SubmitApplication(ctx context.Context, in models.ApplicationInput) (models.Application, error) {
	return l.Active().SubmitApplication(ctx, in)
}

func (l *Ledger) IsJobApplied(jobID string) bool {
	return l.Active().IsJobApplied(jobID)
}

func (l *Ledger) RemoveApplication(ctx context.Context, appID string) bool {
	return l.Active().RemoveApplication(ctx, appID)
}

func (l *Ledger) ClearSavedJobs(ctx context.Context) int {
	return l.Active().ClearSavedJobs(ctx)
}

func (l *Ledger) ClearApplications(ctx context.Context) int {
	return l.Active().ClearApplications(ctx)
}

func (l *Ledger) SavedJobs() []models.JobSnapshot {
	return l.Active().SavedJobs()
}

func (l *Ledger) Applications() []models.Application {
	return l.Active().Applications()
}

// SetJobs replaces the latest fetched job list and refreshes the display
// fields (logo, salary, description) of every saved snapshot whose id
// appears in it. Saved jobs missing from jobs are left alone. The saved
// collection is written only if a snapshot actually changed.
func (l *Ledger) SetJobs(ctx context.Context, jobs []models.JobSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = cloneJobs(jobs)

	fresh := make(map[string]models.JobSnapshot, len(jobs))
	for _, j := range jobs {
		if _, seen := fresh[j.ID]; !seen {
			fresh[j.ID] = j
		}
	}

	type update struct {
		owner string
		job   models.JobSnapshot
	}
	var updates []update
	l.saved.each(func(owner, id string, job models.JobSnapshot) {
		f, ok := fresh[id]
		if !ok {
			return
		}
		if job.CompanyLogo == f.CompanyLogo && job.Salary == f.Salary && job.Description == f.Description {
			return
		}
		job.CompanyLogo, job.Salary, job.Description = f.CompanyLogo, f.Salary, f.Description
		updates = append(updates, update{owner: owner, job: job})
	})
	if len(updates) == 0 {
		return
	}

	for _, u := range updates {
		l.saved.replace(u.owner, u.job.ID, u.job)
	}
	l.metrics.Reconciled.Add(float64(len(updates)))
	l.logger.Debug(ctx, "refreshed saved jobs from feed", "count", len(updates))
	l.persistLocked(ctx, store.KeySavedJobs)
}

// Jobs returns the latest list passed to SetJobs.
func (l *Ledger) Jobs() []models.JobSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneJobs(l.jobs)
}

// Watch keeps the ledger in step with writes made by other ledgers sharing
// the same store. It reacts to store change notifications and, when
// interval is positive, also re-reads both collections every interval to
// pick up writers in other processes. In-memory state is replaced only when
// the stored bytes differ from what this ledger last wrote or read.
//
// Watch blocks until ctx is done. It fails with ErrLedgerNotLoaded when
// called before Load, so that an empty read can never overwrite state that
// has not been loaded yet.
func (l *Ledger) Watch(ctx context.Context, interval time.Duration) error {
	l.mu.Lock()
	loaded := l.loaded
	l.mu.Unlock()
	if !loaded {
		return ErrLedgerNotLoaded
	}

	changes, cancel := l.store.Subscribe(store.KeySavedJobs, store.KeyApplications)
	defer cancel()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			_ = l.Refresh(ctx, c.Key)
		case <-tick:
			_ = l.Refresh(ctx, store.KeySavedJobs, store.KeyApplications)
		}
	}
}

// Refresh re-reads the given collections from the store.
func (l *Ledger) Refresh(ctx context.Context, keys ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, key := range keys {
		errs = append(errs, l.reloadLocked(ctx, key))
	}
	return errors.Join(errs...)
}

// reloadLocked reads key and replaces the matching collection if the bytes
// changed since the last read or write.
func (l *Ledger) reloadLocked(ctx context.Context, key string) error {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		l.suspendLocked(ctx, key, err)
		return fmt.Errorf("%w: %w", common.ErrPersistenceRead, err)
	}
	if l.loaded && !l.suspended[key] && bytes.Equal(raw, l.lastWritten[key]) {
		return nil
	}

	var (
		migrated bool
		rest     []json.RawMessage
	)
	switch key {
	case store.KeySavedJobs:
		var p *partition[models.JobSnapshot]
		p, rest, migrated, err = decodeSaved(raw)
		if err == nil {
			l.saved = p
		}
	case store.KeyApplications:
		var p *partition[models.Application]
		p, rest, migrated, err = decodeApplications(raw, l.now)
		if err == nil {
			l.apps = p
		}
	default:
		return fmt.Errorf("unknown ledger key %q", key)
	}
	if err != nil {
		l.suspendLocked(ctx, key, err)
		return fmt.Errorf("%w: %w", common.ErrPersistenceRead, err)
	}

	if l.suspended[key] {
		l.logger.Info(ctx, "collection readable again, resuming writes", "key", key)
	}
	delete(l.suspended, key)
	l.lastWritten[key] = raw
	l.unreadable[key] = rest
	if len(rest) > 0 {
		l.logger.Warn(ctx, "kept undecodable records as stored", "key", key, "count", len(rest))
	}

	if migrated {
		l.logger.Info(ctx, "migrated legacy records", "key", key, "owner", LegacyOwnerID)
		l.persistLocked(ctx, key)
	}
	return nil
}

func (l *Ledger) suspendLocked(ctx context.Context, key string, err error) {
	if !l.suspended[key] {
		l.logger.Error(ctx, "failed to read collection, writes suspended", "key", key, "error", err)
	}
	l.suspended[key] = true
}

// persistLocked rewrites the whole collection stored under key.
func (l *Ledger) persistLocked(ctx context.Context, key string) {
	if l.suspended[key] {
		l.metrics.StoreWrites.WithLabelValues(key, metrics.OutcomeRejected).Inc()
		l.logger.Warn(ctx, "write skipped, collection not readable", "key", key)
		return
	}

	var (
		data []byte
		err  error
	)
	switch key {
	case store.KeySavedJobs:
		data, err = encodeSaved(l.saved, l.unreadable[key])
	case store.KeyApplications:
		data, err = encodeApplications(l.apps, l.unreadable[key])
	}
	if err != nil {
		l.metrics.StoreWrites.WithLabelValues(key, metrics.OutcomeError).Inc()
		l.logger.Error(ctx, "failed to encode collection", "key", key, "error", err)
		return
	}
	if bytes.Equal(data, l.lastWritten[key]) {
		return
	}

	if err := l.store.Set(ctx, key, data); err != nil {
		l.metrics.StoreWrites.WithLabelValues(key, metrics.OutcomeError).Inc()
		l.logger.Error(ctx, "failed to persist collection", "key", key,
			"error", fmt.Errorf("%w: %w", common.ErrPersistenceWrite, err))
		return
	}
	l.lastWritten[key] = data
	l.metrics.StoreWrites.WithLabelValues(key, metrics.OutcomeOK).Inc()
}

// UserView is the ledger as seen by one owner.
type UserView struct {
	l     *Ledger
	owner string
}

// Owner returns the id the view acts for.
func (v UserView) Owner() string {
	return v.owner
}

// AddJob saves job for the owner. It reports false when the view has no
// owner or the job is already saved.
func (v UserView) AddJob(ctx context.Context, job models.JobSnapshot) bool {
	if v.owner == "" || job.ID == "" {
		return false
	}
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.saved.add(v.owner, job.ID, job.Clone()) {
		return false
	}
	l.persistLocked(ctx, store.KeySavedJobs)
	return true
}

func (v UserView) RemoveJob(ctx context.Context, jobID string) bool {
	if v.owner == "" {
		return false
	}
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.saved.remove(v.owner, jobID) {
		return false
	}
	l.persistLocked(ctx, store.KeySavedJobs)
	return true
}

func (v UserView) IsJobSaved(jobID string) bool {
	if v.owner == "" {
		return false
	}
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	return v.l.saved.has(v.owner, jobID)
}

// SavedJob returns the owner's saved snapshot of jobID.
func (v UserView) SavedJob(jobID string) (models.JobSnapshot, bool) {
	if v.owner == "" {
		return models.JobSnapshot{}, false
	}
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	job, ok := v.l.saved.get(v.owner, jobID)
	return job.Clone(), ok
}

// ApplyToJob creates a pending application. The owner is in.OwnerUserID,
// or the view's owner if the input leaves it empty; with neither it does
// nothing and reports false.
func (v UserView) ApplyToJob(ctx context.Context, in models.ApplicationInput) (models.Application, bool) {
	owner := v.resolve(in.OwnerUserID)
	if owner == "" {
		return models.Application{}, false
	}
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.insertApplicationLocked(ctx, owner, in), true
}

// SubmitApplication is ApplyToJob with the one-application-per-job rule
// checked under the same lock as the insert. It fails with
// common.ErrNotAuthenticated when there is no owner and
// common.ErrAlreadyApplied when the owner already applied to the job.
func (v UserView) SubmitApplication(ctx context.Context, in models.ApplicationInput) (models.Application, error) {
	owner := v.resolve(in.OwnerUserID)
	if owner == "" {
		return models.Application{}, common.ErrNotAuthenticated
	}
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.appliedLocked(owner, in.JobID) {
		return models.Application{}, common.ErrAlreadyApplied
	}
	return l.insertApplicationLocked(ctx, owner, in), nil
}

func (v UserView) IsJobApplied(jobID string) bool {
	if v.owner == "" {
		return false
	}
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	return v.l.appliedLocked(v.owner, jobID)
}

// RemoveApplication cancels one of the owner's applications. Applications
// of other owners are never removed, even when their id is known.
func (v UserView) RemoveApplication(ctx context.Context, appID string) bool {
	if v.owner == "" {
		return false
	}
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.apps.remove(v.owner, appID) {
		return false
	}
	l.persistLocked(ctx, store.KeyApplications)
	return true
}

// ClearSavedJobs removes every job saved by the owner and returns how many
// were removed. Other owners' entries are kept.
func (v UserView) ClearSavedJobs(ctx context.Context) int {
	if v.owner == "" {
		return 0
	}
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.saved.clear(v.owner)
	if n > 0 {
		l.persistLocked(ctx, store.KeySavedJobs)
	}
	return n
}

// ClearApplications removes every application of the owner.
func (v UserView) ClearApplications(ctx context.Context) int {
	if v.owner == "" {
		return 0
	}
	l := v.l
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.apps.clear(v.owner)
	if n > 0 {
		l.persistLocked(ctx, store.KeyApplications)
	}
	return n
}

// SavedJobs returns the owner's saved snapshots, oldest first.
func (v UserView) SavedJobs() []models.JobSnapshot {
	if v.owner == "" {
		return []models.JobSnapshot{}
	}
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	return cloneJobs(v.l.saved.list(v.owner))
}

// Applications returns the owner's applications, oldest first.
func (v UserView) Applications() []models.Application {
	if v.owner == "" {
		return []models.Application{}
	}
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	return v.l.apps.list(v.owner)
}

func (v UserView) resolve(owner string) string {
	if owner != "" {
		return owner
	}
	return v.owner
}

func (l *Ledger) appliedLocked(owner, jobID string) bool {
	for _, a := range l.apps.list(owner) {
		if a.JobID == jobID {
			return true
		}
	}
	return false
}

func (l *Ledger) insertApplicationLocked(ctx context.Context, owner string, in models.ApplicationInput) models.Application {
	now := l.now().UTC()
	app := models.Application{
		ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		JobID:       in.JobID,
		JobTitle:    in.JobTitle,
		Company:     in.Company,
		CompanyLogo: in.CompanyLogo,
		Status:      models.StatusPending,
		OwnerUserID: owner,
		AppliedAt:   now,
	}
	l.apps.add(owner, app.ID, app)
	l.persistLocked(ctx, store.KeyApplications)
	l.logger.Debug(ctx, "application recorded", "application_id", app.ID, "job_id", app.JobID, "user_id", owner)
	return app
}

func cloneJobs(jobs []models.JobSnapshot) []models.JobSnapshot {
	out := make([]models.JobSnapshot, len(jobs))
	for i, j := range jobs {
		out[i] = j.Clone()
	}
	return out
}
