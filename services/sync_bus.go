package services

import (
	"time"

	"github.com/google/uuid"
)

// Sync event kinds.
const (
	SyncOK          = "sync.ok"
	SyncFailed      = "sync.failed"
	ReconcileOK     = "reconcile.ok"
	ReconcileFailed = "reconcile.failed"
	ReminderWater   = "reminder.water"
)

// SyncEvent is the observable outcome of a background sync step. The UI may
// subscribe to these over the hub; nothing waits for it to.
type SyncEvent struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Table  string    `json:"table,omitempty"`
	UserID string    `json:"user_id"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

type syncDeps struct {
	hub *SyncHub
}

var _sync syncDeps

func InitSyncDeps(hub *SyncHub) {
	_sync = syncDeps{hub: hub}
}

// EmitSyncEvent is safe to call anywhere; it is a no-op before InitSyncDeps.
func EmitSyncEvent(userID, kind, table string, err error) {
	if _sync.hub == nil {
		return
	}
	ev := SyncEvent{
		ID:     uuid.NewString(),
		Kind:   kind,
		Table:  table,
		UserID: userID,
		At:     time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	_sync.hub.Broadcast(userID, ev)
}
