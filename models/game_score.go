package models

// Game type tags. The tag decides which payload fields a record carries;
// a record never mixes fields from two variants.
const (
	GameMatching         = "matching"
	GameNumberRecall     = "number_recall"
	GameObjectSequencing = "object_sequencing"
	GameStroopTest       = "stroop_test"
)

// AnonymousUserID marks records created before any identity is established.
// Anonymous records stay in the local cache and are never sent to the gateway.
const AnonymousUserID = "anonymous"

// GameScoreRecord is a tagged union over the four game variants.
// GameType selects the payload: matching uses Score/Attempts, number recall
// uses IdentifiedCount/TotalCount/Comments, object sequencing uses
// IsCorrect/Attempts, stroop uses Row/Column. Duration is common to all.
type GameScoreRecord struct {
	GameType    string `json:"game_type"`
	UserID      string `json:"user_id"`
	DurationSec int    `json:"duration"`

	// matching
	Score    int `json:"score,omitempty"`
	Attempts int `json:"attempts,omitempty"`

	// number recall
	IdentifiedCount int    `json:"identified_count,omitempty"`
	TotalCount      int    `json:"total_count,omitempty"`
	Comments        string `json:"comments,omitempty"`

	// object sequencing (shares Attempts)
	IsCorrect bool `json:"is_correct,omitempty"`

	// stroop test
	Row    int `json:"row,omitempty"`
	Column int `json:"column,omitempty"`
}

// DecodeGameScoreRow normalizes one raw gateway row into a GameScoreRecord.
// The remote stores the variant payload as a loose JSON object, so nothing
// about its shape is trusted: missing numerics default to 0, missing booleans
// to false, and rows with an unknown game type are rejected (ok=false).
func DecodeGameScoreRow(row map[string]any) (GameScoreRecord, bool) {
	gameType, _ := row["game_type"].(string)
	switch gameType {
	case GameMatching, GameNumberRecall, GameObjectSequencing, GameStroopTest:
	default:
		return GameScoreRecord{}, false
	}

	rec := GameScoreRecord{
		GameType: gameType,
		UserID:   stringField(row, "user_id"),
	}

	payload, _ := row["score"].(map[string]any)
	if payload == nil {
		payload = row // flat rows are accepted too
	}
	rec.DurationSec = intField(payload, "duration")

	switch gameType {
	case GameMatching:
		rec.Score = intField(payload, "score")
		rec.Attempts = intField(payload, "attempts")
	case GameNumberRecall:
		rec.IdentifiedCount = intField(payload, "identified_count")
		rec.TotalCount = intField(payload, "total_count")
		rec.Comments = stringField(row, "comments")
	case GameObjectSequencing:
		rec.IsCorrect = boolField(payload, "is_correct")
		rec.Attempts = intField(payload, "attempts")
	case GameStroopTest:
		rec.Row = intField(payload, "row")
		rec.Column = intField(payload, "column")
	}
	return rec, true
}

// scorePayload is what the gateway's game_scores.score JSON column holds.
func (r GameScoreRecord) ScorePayload() map[string]any {
	p := map[string]any{"duration": r.DurationSec}
	switch r.GameType {
	case GameMatching:
		p["score"] = r.Score
		p["attempts"] = r.Attempts
	case GameNumberRecall:
		p["identified_count"] = r.IdentifiedCount
		p["total_count"] = r.TotalCount
	case GameObjectSequencing:
		p["is_correct"] = r.IsCorrect
		p["attempts"] = r.Attempts
	case GameStroopTest:
		p["row"] = r.Row
		p["column"] = r.Column
	}
	return p
}

// JSON numbers decode as float64; everything else counts as missing.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
