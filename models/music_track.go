package models

// MusicTrackRecord is a playable track. Exactly one of built-in or
// user-owned holds: a built-in track carries no UserID and no UploadTime.
type MusicTrackRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	IsBuiltIn  bool   `json:"is_built_in"`
	FilePath   string `json:"file_path"`
	UserID     string `json:"user_id,omitempty"`
	UploadTime int64  `json:"upload_time,omitempty"`
}

// OwnedBy reports whether the track belongs to the given user.
// Built-in tracks belong to nobody.
func (t MusicTrackRecord) OwnedBy(userID string) bool {
	return !t.IsBuiltIn && t.UserID == userID
}

// DecodeMusicTrackRow normalizes a raw gateway row. A row claiming to be
// built-in has its user_id cleared, and a non-built-in row without an owner
// is dropped, so the built-in/user-owned invariant holds regardless of what
// the remote stored.
func DecodeMusicTrackRow(row map[string]any) (MusicTrackRecord, bool) {
	rec := MusicTrackRecord{
		ID:         stringField(row, "id"),
		Title:      stringField(row, "title"),
		Artist:     stringField(row, "artist"),
		IsBuiltIn:  boolField(row, "is_built_in"),
		FilePath:   stringField(row, "file_path"),
		UserID:     stringField(row, "user_id"),
		UploadTime: int64Field(row, "upload_time"),
	}
	if rec.ID == "" || rec.FilePath == "" {
		return MusicTrackRecord{}, false
	}
	if rec.IsBuiltIn {
		rec.UserID = ""
		rec.UploadTime = 0
	} else if rec.UserID == "" {
		return MusicTrackRecord{}, false
	}
	return rec, true
}
