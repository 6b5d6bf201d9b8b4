// Package sync bridges optimistic local edits and the authoritative remote
// activity store. Creates are remote-sourced-of-truth and followed by a full
// refresh; updates are local-only because the remote store exposes no update
// endpoint. That asymmetry is deliberate and preserved here.
package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fieldops/internal/remote"
	"fieldops/internal/schedule"
	"fieldops/internal/store"
	"fieldops/internal/types"
	"fieldops/internal/visibility"
)

// Remote is the slice of the activity-store contract the engine needs.
type Remote interface {
	List(ctx context.Context, role types.Role, userID string) ([]types.Activity, error)
	Create(ctx context.Context, payload remote.NewActivity) (types.Activity, error)
}

// ErrNotFound is returned by UpdateLocal for an unknown activity id.
var ErrNotFound = errors.New("sync: activity not found")

// OwnershipError rejects an import whose rows are owned by someone other than
// the importing field promoter. Nothing from such an import is applied.
type OwnershipError struct {
	Importer string
	RowOwner string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("sync: import by %s includes rows owned by %s", e.Importer, e.RowOwner)
}

// Options configures an Engine. Journal and Logger may be nil.
type Options struct {
	Journal *store.Journal
	Logger  *zap.Logger

	// FallbackAssignee receives admin-authored activities with no explicit
	// assignee; FallbackAdmin is the default assignee when a field promoter
	// authors an activity.
	FallbackAssignee string
	FallbackAdmin    string
}

// Engine orchestrates remote fetch, optimistic local mutation, and queued
// bulk writes against one local store.
type Engine struct {
	remote  Remote
	store   *store.Store
	journal *store.Journal
	logger  *zap.Logger

	fallbackAssignee string
	fallbackAdmin    string
}

// NewEngine wires an engine over a remote client and a local store.
func NewEngine(r Remote, s *store.Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		remote:           r,
		store:            s,
		journal:          opts.Journal,
		logger:           logger,
		fallbackAssignee: opts.FallbackAssignee,
		fallbackAdmin:    opts.FallbackAdmin,
	}
}

// =============================================================================
// REFRESH
// =============================================================================

// Refresh replaces the entire local activity collection with the role-scoped
// remote listing. The remote list is ground truth: no merging. On any failure
// the existing collection is left untouched.
func (e *Engine) Refresh(ctx context.Context, session types.Session) error {
	activities, err := e.remote.List(ctx, session.Role, session.UserID)
	if err != nil {
		e.logger.Warn("refresh failed, keeping local state", zap.Error(err))
		e.record("refresh", err.Error(), false)
		return err
	}
	if err := e.store.ReplaceActivities(activities); err != nil {
		e.record("refresh", err.Error(), false)
		return err
	}
	e.logger.Info("refreshed activities", zap.Int("count", len(activities)))
	e.record("refresh", fmt.Sprintf("%d activities", len(activities)), true)
	return nil
}

// =============================================================================
// CREATE
// =============================================================================

// Create sends one activity to the remote store and, on success, refreshes so
// the canonical id replaces any locally minted one. A failed create is
// discarded: no retry, no queue.
func (e *Engine) Create(ctx context.Context, a types.Activity, session types.Session) error {
	if _, err := e.remote.Create(ctx, e.payload(a, session)); err != nil {
		e.logger.Warn("create failed, discarding", zap.String("objective", a.Objective), zap.Error(err))
		e.record("create", err.Error(), false)
		return err
	}
	e.record("create", a.Objective, true)
	return e.Refresh(ctx, session)
}

// payload translates the local activity shape into the remote creation
// payload, resolving owner and assignee.
func (e *Engine) payload(a types.Activity, session types.Session) remote.NewActivity {
	owner := a.PromoterID
	if owner == "" {
		owner = session.UserID
	}

	assignee := a.AssignedTo
	if assignee == "" {
		if session.Role == types.RoleAdmin {
			assignee = e.fallbackAssignee
		} else {
			assignee = e.fallbackAdmin
		}
	}

	status := a.Status
	if status == "" {
		status = types.StatusPending
	}

	return remote.NewActivity{
		CreatedBy:  owner,
		Role:       remote.WireRole(session.Role),
		AssignedTo: assignee,
		Objective:  a.Objective,
		Community:  a.Community,
		Date:       a.Date,
		Time:       a.Time,
		Status:     string(status),
	}
}

// =============================================================================
// BULK CREATE / IMPORT
// =============================================================================

// BulkResult summarizes a bulk create: which inputs landed and which were
// skipped after a failed create.
type BulkResult struct {
	Created int
	Skipped int
}

// BulkCreate issues creates strictly in input order, one at a time. Failing
// items are skipped, surviving items stay, and exactly one refresh follows
// the whole batch. There is no rollback: the remote store has no multi-row
// transactional endpoint, so simplicity wins over atomicity.
func (e *Engine) BulkCreate(ctx context.Context, items []types.Activity, session types.Session) (BulkResult, error) {
	var result BulkResult
	for _, item := range items {
		if _, err := e.remote.Create(ctx, e.payload(item, session)); err != nil {
			e.logger.Warn("bulk item failed, skipping",
				zap.String("objective", item.Objective), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Created++
	}
	e.record("bulk_create", fmt.Sprintf("%d created, %d skipped", result.Created, result.Skipped), result.Skipped == 0)

	if err := e.Refresh(ctx, session); err != nil {
		return result, err
	}
	return result, nil
}

// ImportCSV decodes a schedule blob and bulk-creates its rows. A schema error
// aborts with nothing applied. A field promoter may only import rows they own;
// one foreign row rejects the whole file.
func (e *Engine) ImportCSV(ctx context.Context, blob string, session types.Session) (BulkResult, error) {
	rows, err := schedule.Decode(blob)
	if err != nil {
		e.record("import", err.Error(), false)
		return BulkResult{}, err
	}

	if session.Role != types.RoleAdmin {
		for i := range rows {
			if rows[i].PromoterID == "" {
				rows[i].PromoterID = session.UserID
			}
			if rows[i].PromoterID != session.UserID {
				err := &OwnershipError{Importer: session.UserID, RowOwner: rows[i].PromoterID}
				e.record("import", err.Error(), false)
				return BulkResult{}, err
			}
		}
	}

	return e.BulkCreate(ctx, rows, session)
}

// ExportCSV encodes the caller's visible slice of the local collection.
func (e *Engine) ExportCSV(session types.Session, adminScope string) string {
	visible := visibility.Visible(e.store.Activities(), session.Role, session.UserID, adminScope)
	return schedule.Encode(visible)
}

// =============================================================================
// LOCAL UPDATE
// =============================================================================

// Patch is a field-level merge for one activity; nil fields are untouched.
type Patch struct {
	Status       *types.Status
	AssignedTo   *string
	Community    *string
	Objective    *string
	Date         *string
	Time         *string
	Place        *string
	Proposals    *string
	Agreements   *string
	Observations *string
	Referral     *string
	Companions   *string
	PhotoRef     *string
	DriveLink    *string

	// AppendNote adds one entry to the append-only note trail.
	AppendNote *types.ObservationNote
}

// UpdateLocal merges patch into exactly the activity with the given id and
// writes through to the local store. No remote call is issued: this change is
// visible only to the current client until the backend gains update support.
func (e *Engine) UpdateLocal(id string, patch Patch) error {
	found := false
	err := e.store.UpdateActivities(func(activities []types.Activity) []types.Activity {
		for i := range activities {
			if activities[i].ID != id {
				continue
			}
			applyPatch(&activities[i], patch)
			found = true
			break
		}
		return activities
	})
	if err != nil {
		e.record("update_local", err.Error(), false)
		return err
	}
	if !found {
		e.record("update_local", fmt.Sprintf("%s: not found", id), false)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.record("update_local", id, true)
	return nil
}

func applyPatch(a *types.Activity, p Patch) {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	setStr(&a.AssignedTo, p.AssignedTo)
	setStr(&a.Community, p.Community)
	setStr(&a.Objective, p.Objective)
	setStr(&a.Date, p.Date)
	setStr(&a.Time, p.Time)
	setStr(&a.Place, p.Place)
	setStr(&a.Proposals, p.Proposals)
	setStr(&a.Agreements, p.Agreements)
	setStr(&a.Observations, p.Observations)
	setStr(&a.Referral, p.Referral)
	setStr(&a.Companions, p.Companions)
	setStr(&a.PhotoRef, p.PhotoRef)
	setStr(&a.DriveLink, p.DriveLink)
	if p.AppendNote != nil {
		a.Notes = append(a.Notes, *p.AppendNote)
	}
}

func (e *Engine) record(op, detail string, ok bool) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(op, detail, ok); err != nil {
		e.logger.Warn("journal write failed", zap.String("op", op), zap.Error(err))
	}
}
