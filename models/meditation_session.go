package models

// MeditationSessionRecord is one completed meditation sit. DurationSec is
// seconds spent; ConcentrationImprovement is an optional self-rating (0-100).
type MeditationSessionRecord struct {
	Timestamp                int64  `json:"timestamp"`
	UserID                   string `json:"user_id"`
	DurationSec              int    `json:"duration"`
	ConcentrationImprovement *int   `json:"concentration_improvement,omitempty"`
}

// DecodeMeditationSessionRow normalizes a raw gateway row, defaulting
// missing numerics to zero and dropping an out-of-range improvement rating.
func DecodeMeditationSessionRow(row map[string]any) MeditationSessionRecord {
	rec := MeditationSessionRecord{
		Timestamp:   int64Field(row, "created_at"),
		UserID:      stringField(row, "user_id"),
		DurationSec: intField(row, "duration"),
	}
	if v, ok := row["concentration_improvement"].(float64); ok {
		n := int(v)
		if n >= 0 && n <= 100 {
			rec.ConcentrationImprovement = &n
		}
	}
	return rec
}
