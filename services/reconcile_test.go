package services

import (
	"context"
	"testing"

	"mindboost/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRemoteScores(gw *fakeGateway) {
	gw.rows[TableGameScores+":"+models.GameMatching] = []map[string]any{
		{"user_id": "alice", "game_type": models.GameMatching,
			"score": map[string]any{"score": float64(80), "attempts": float64(5), "duration": float64(45)}},
	}
	gw.rows[TableGameScores+":"+models.GameStroopTest] = []map[string]any{
		{"user_id": "alice", "game_type": models.GameStroopTest,
			"score": map[string]any{"row": float64(3), "column": float64(4), "duration": float64(20)}},
	}
}

func signIn(svc *ProgressService, userID string) {
	svc.mu.Lock()
	svc.identity = userID
	svc.mu.Unlock()
}

func TestReconcile_ReplacesWithRemoteView(t *testing.T) {
	gw := newFakeGateway()
	seedRemoteScores(gw)
	gw.rows[TableWaterLogs] = []map[string]any{
		{"user_id": "alice", "amount": float64(300), "created_at": float64(1700000000000)},
	}

	svc := NewProgressService(newTestCache(t), gw)
	signIn(svc, "alice")
	require.NoError(t, svc.Refresh(context.Background()))

	matching := svc.GetScoresByType("alice", models.GameMatching)
	require.Len(t, matching, 1)
	assert.Equal(t, 80, matching[0].Score)

	stroop := svc.GetScoresByType("alice", models.GameStroopTest)
	require.Len(t, stroop, 1)
	assert.Equal(t, 3, stroop[0].Row)
	assert.Equal(t, 4, stroop[0].Column)
}

func TestReconcile_Idempotent(t *testing.T) {
	gw := newFakeGateway()
	seedRemoteScores(gw)

	svc := NewProgressService(newTestCache(t), gw)
	signIn(svc, "alice")

	require.NoError(t, svc.Refresh(context.Background()))
	first := append([]models.GameScoreRecord(nil), svc.GetScoresByType("alice", models.GameMatching)...)
	first = append(first, svc.GetScoresByType("alice", models.GameStroopTest)...)

	require.NoError(t, svc.Refresh(context.Background()))
	second := append([]models.GameScoreRecord(nil), svc.GetScoresByType("alice", models.GameMatching)...)
	second = append(second, svc.GetScoresByType("alice", models.GameStroopTest)...)

	assert.Equal(t, first, second, "unchanged remote data must yield the same view")
}

func TestReconcile_OneVariantFailureAbortsReplace(t *testing.T) {
	gw := newFakeGateway()
	svc := NewProgressService(newTestCache(t), gw)

	require.NoError(t, svc.AddMatchingScore("alice", 10, 1, 30))
	signIn(svc, "alice")

	seedRemoteScores(gw)
	gw.failSelect[TableGameScores+":"+models.GameNumberRecall] = true

	err := svc.Refresh(context.Background())
	assert.Error(t, err)

	// existing view stands: the locally added score, not the remote one
	scores := svc.GetScoresByType("alice", models.GameMatching)
	require.Len(t, scores, 1)
	assert.Equal(t, 10, scores[0].Score)
}

func TestReconcile_AnonymousKeepsLocalState(t *testing.T) {
	gw := newFakeGateway()
	seedRemoteScores(gw)
	svc := NewProgressService(newTestCache(t), gw)

	require.NoError(t, svc.AddMatchingScore(models.AnonymousUserID, 42, 3, 60))
	require.NoError(t, svc.Refresh(context.Background())) // identity is anonymous

	scores := svc.GetScoresByType(models.AnonymousUserID, models.GameMatching)
	require.Len(t, scores, 1)
	assert.Equal(t, 42, scores[0].Score)
	assert.Empty(t, svc.GetScoresByType("alice", models.GameMatching), "no remote fetch for anonymous")
}

func TestReconcile_RetainsAnonymousRecordsOnReplace(t *testing.T) {
	gw := newFakeGateway()
	seedRemoteScores(gw)
	svc := NewProgressService(newTestCache(t), gw)

	require.NoError(t, svc.AddMatchingScore(models.AnonymousUserID, 42, 3, 60))
	require.NoError(t, svc.AddWaterLog(models.AnonymousUserID, 200, dayAt(t, "09:00")))

	signIn(svc, "alice")
	require.NoError(t, svc.Refresh(context.Background()))

	assert.Len(t, svc.GetScoresByType(models.AnonymousUserID, models.GameMatching), 1)
	assert.Len(t, svc.GetScoresByType("alice", models.GameMatching), 1)

	analytics := NewAnalyticsService(svc)
	assert.Equal(t, 200, analytics.TotalWaterToday(dayAt(t, "10:00"), models.AnonymousUserID))
}

func TestReconcile_StaleResponseDiscarded(t *testing.T) {
	gw := newFakeGateway()
	seedRemoteScores(gw)
	svc := NewProgressService(newTestCache(t), gw)

	// requested for alice, but bob signed in while the fetch was in flight
	signIn(svc, "alice")
	signIn(svc, "bob")
	require.NoError(t, svc.reconcileFor(context.Background(), "alice"))

	assert.Empty(t, svc.GetScoresByType("alice", models.GameMatching),
		"stale result must not replace the view owned by the new identity")
}

func TestReconcile_MalformedRowsDiscarded(t *testing.T) {
	gw := newFakeGateway()
	gw.rows[TableGameScores+":"+models.GameMatching] = []map[string]any{
		{"user_id": "alice", "game_type": models.GameMatching,
			"score": map[string]any{"score": float64(80), "attempts": float64(5)}}, // duration missing → 0
		{"user_id": "alice", "game_type": "tetris"}, // unknown variant → dropped
	}

	svc := NewProgressService(newTestCache(t), gw)
	signIn(svc, "alice")
	require.NoError(t, svc.Refresh(context.Background()))

	scores := svc.GetScoresByType("alice", models.GameMatching)
	require.Len(t, scores, 1)
	assert.Equal(t, 0, scores[0].DurationSec, "missing numeric defaults to 0")
}

func TestReconcile_MusicCatalogSharedFilteredAtReadTime(t *testing.T) {
	gw := newFakeGateway()
	gw.rows[TableMusicTracks] = []map[string]any{
		{"id": "t1", "title": "Ocean", "is_built_in": true, "file_path": "https://cdn.example.com/tracks/ocean.mp3"},
		{"id": "t2", "title": "Focus", "is_built_in": false, "user_id": "alice", "file_path": "https://cdn.example.com/tracks/focus.mp3"},
		{"id": "t3", "title": "Sleep", "is_built_in": false, "user_id": "bob", "file_path": "https://cdn.example.com/tracks/sleep.mp3"},
	}

	svc := NewProgressService(newTestCache(t), gw)
	signIn(svc, "alice")
	require.NoError(t, svc.Refresh(context.Background()))

	all := svc.GetAllTracks("alice")
	require.Len(t, all, 2, "built-in plus alice's upload; bob's stays hidden")
	assert.Len(t, svc.GetUserTracks("alice"), 1)
	assert.Len(t, svc.GetUserTracks("bob"), 1, "the catalog itself holds every user's rows")
}
