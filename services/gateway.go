package services

import (
	"context"
	"fmt"
)

// Gateway table names.
const (
	TableGameScores         = "game_scores"
	TableWaterLogs          = "water_logs"
	TableMeditationSessions = "meditation_sessions"
	TableMusicTracks        = "music_tracks"
)

// GatewayError kinds. Unavailable covers transport failures (the remote
// never saw the request); Request covers rejections the remote returned.
const (
	GatewayUnavailable = "unavailable"
	GatewayRequest     = "request"
)

type GatewayError struct {
	Kind string
	Op   string
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// RecordFilter narrows a SelectRecords call. UserID is always set; GameType
// is only meaningful for the game_scores table.
type RecordFilter struct {
	UserID   string
	GameType string
}

// Gateway is the remote auth/storage service as seen by this core. All calls
// may fail; callers decide whether a failure is logged (background sync) or
// surfaced (foreground user actions).
type Gateway interface {
	InsertRecord(ctx context.Context, table string, payload map[string]any) error
	SelectRecords(ctx context.Context, table string, filter RecordFilter) ([]map[string]any, error)
	DeleteRecord(ctx context.Context, table, id, userID string) error

	UploadFile(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
	DeleteFile(ctx context.Context, bucket, path string) error

	// OnIdentityChange registers cb to run on every auth transition, and once
	// immediately with the current identity. Empty userID means signed out.
	OnIdentityChange(cb func(userID string)) (unsubscribe func())
}
