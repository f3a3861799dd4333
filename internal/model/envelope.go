package model

import "time"

// SyncEnvelope carries the bookkeeping fields every syncable entity
// needs: identity, tenant scoping, the dirty bit, a flush-ordering hint
// and the timestamp of the last confirmed round-trip with the backend.
type SyncEnvelope struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"company_id"`
	NeedsSync    bool       `json:"needs_sync"`
	SyncPriority int        `json:"sync_priority"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// Sync priorities. Higher values are flushed first when multiple
// entities are dirty; this is a soft ordering hint, not a guarantee.
const (
	PriorityLow    = 0
	PriorityNormal = 5
	PriorityHigh   = 10
)

// Entity kinds used where an operation needs to name its owner.
const (
	OwnerProject = "project"
	OwnerTask    = "task"
)

// MarkDirty flags the entity for the next push.
func (e *SyncEnvelope) MarkDirty() {
	e.NeedsSync = true
}

// MarkSynced records a confirmed round-trip.
func (e *SyncEnvelope) MarkSynced(at time.Time) {
	e.NeedsSync = false
	t := at
	e.LastSyncedAt = &t
}

// EverSynced reports whether the entity has completed at least one
// round-trip. A false value selects "create" rather than "update"
// semantics on the next push.
func (e *SyncEnvelope) EverSynced() bool {
	return e.LastSyncedAt != nil
}
