package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mindboost/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWaterLog_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewProgressService(newTestCache(t), newFakeGateway())

	for _, amount := range []int{0, -1, -500} {
		err := svc.AddWaterLog("alice", amount, time.Now())
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("AddWaterLog(%d) = %v, want ValidationError", amount, err)
		}
	}
}

func TestAddMatchingScore_OfflineStillVisibleAndCached(t *testing.T) {
	cache := newTestCache(t)
	gw := newFakeGateway()
	gw.failInsert = true // gateway always fails

	svc := NewProgressService(cache, gw)
	require.NoError(t, svc.AddMatchingScore("bob", 80, 7, 45))

	scores := svc.GetScoresByType("bob", models.GameMatching)
	require.Len(t, scores, 1)
	assert.Equal(t, 80, scores[0].Score)
	assert.Equal(t, 7, scores[0].Attempts)
	assert.Equal(t, 45, scores[0].DurationSec)

	// a fresh service over the same cache sees the record
	reloaded := NewProgressService(cache, gw)
	scores = reloaded.GetScoresByType("bob", models.GameMatching)
	require.Len(t, scores, 1)
	assert.Equal(t, 80, scores[0].Score)
}

func TestMutations_PropagateOnlyForEstablishedIdentity(t *testing.T) {
	gw := newFakeGateway()
	svc := NewProgressService(newTestCache(t), gw)

	require.NoError(t, svc.AddWaterLog(models.AnonymousUserID, 250, time.Now()))
	require.NoError(t, svc.AddWaterLog("alice", 250, time.Now()))

	assert.Eventually(t, func() bool {
		return gw.insertCount(TableWaterLogs) == 1
	}, time.Second, 10*time.Millisecond, "exactly the non-anonymous log should reach the gateway")

	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Len(t, gw.inserts[TableWaterLogs], 1)
	assert.Equal(t, "alice", gw.inserts[TableWaterLogs][0]["user_id"])
}

func TestGetRecentScores_NewestFirstAndLimited(t *testing.T) {
	svc := NewProgressService(newTestCache(t), newFakeGateway())

	require.NoError(t, svc.AddMatchingScore("alice", 10, 1, 30))
	require.NoError(t, svc.AddStroopScore("alice", 2, 3, 20))
	require.NoError(t, svc.AddMatchingScore("carol", 99, 1, 10)) // other user
	require.NoError(t, svc.AddMatchingScore("alice", 50, 2, 40))

	recent := svc.GetRecentScores("alice", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, 50, recent[0].Score)
	assert.Equal(t, models.GameStroopTest, recent[1].GameType)
}

func TestDeleteUserTrack_LocalRemovalSurvivesRemoteFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.failDeleteFile = true
	gw.failDeleteRec = true

	svc := NewProgressService(newTestCache(t), gw)
	track, err := svc.AddUserTrack("alice", "Rainfall", "", "https://cdn.example.com/tracks/rain.mp3", time.Now())
	require.NoError(t, err)

	err = svc.DeleteUserTrack(context.Background(), "alice", track.ID)
	assert.Error(t, err, "remote failure is reported to the foreground caller")

	assert.Empty(t, svc.GetUserTracks("alice"))
	assert.Empty(t, svc.GetAllTracks("alice"))
}

func TestDeleteUserTrack_CannotDeleteOthersOrBuiltIn(t *testing.T) {
	svc := NewProgressService(newTestCache(t), newFakeGateway())

	builtIn := svc.AddBuiltInTrack("Ocean Waves", "", "file:///assets/ocean.mp3")
	theirs, err := svc.AddUserTrack("bob", "Mix", "", "https://cdn.example.com/tracks/mix.mp3", time.Now())
	require.NoError(t, err)

	var verr *models.ValidationError
	err = svc.DeleteUserTrack(context.Background(), "alice", builtIn.ID)
	require.ErrorAs(t, err, &verr)
	err = svc.DeleteUserTrack(context.Background(), "alice", theirs.ID)
	require.ErrorAs(t, err, &verr)

	assert.Len(t, svc.GetAllTracks("bob"), 2)
}

func TestTrackQueries_OwnershipFiltering(t *testing.T) {
	svc := NewProgressService(newTestCache(t), newFakeGateway())

	svc.AddBuiltInTrack("Ocean Waves", "", "file:///assets/ocean.mp3")
	_, err := svc.AddUserTrack("alice", "Focus", "A", "https://cdn.example.com/tracks/focus.mp3", time.Now())
	require.NoError(t, err)
	_, err = svc.AddUserTrack("bob", "Sleep", "B", "https://cdn.example.com/tracks/sleep.mp3", time.Now())
	require.NoError(t, err)

	all := svc.GetAllTracks("alice")
	require.Len(t, all, 2, "built-in plus alice's own")
	mine := svc.GetUserTracks("alice")
	require.Len(t, mine, 1)
	assert.Equal(t, "Focus", mine[0].Title)
}

func TestWaterSettings_UnifiedRecordAcrossBothEntryPoints(t *testing.T) {
	svc := NewProgressService(newTestCache(t), newFakeGateway())

	require.NoError(t, svc.SetDailyWaterGoal("alice", 2500))
	require.NoError(t, svc.UpdateWaterSettings("alice", "06:30", "23:00", false))

	ws := svc.GetWaterSettings("alice")
	assert.Equal(t, 2500, ws.DailyGoalML, "schedule update must not clobber the goal")
	assert.Equal(t, "06:30", ws.WakeUpTime)
	assert.Equal(t, "23:00", ws.SleepTime)
	assert.False(t, ws.RemindersEnabled)

	require.NoError(t, svc.SetDailyWaterGoal("alice", 3000))
	ws = svc.GetWaterSettings("alice")
	assert.Equal(t, "06:30", ws.WakeUpTime, "goal update must not clobber the schedule")
	assert.Equal(t, 3000, ws.DailyGoalML)
}

func TestWaterSettings_Validation(t *testing.T) {
	svc := NewProgressService(newTestCache(t), newFakeGateway())

	var verr *models.ValidationError
	require.ErrorAs(t, svc.SetDailyWaterGoal("alice", 0), &verr)
	require.ErrorAs(t, svc.UpdateWaterSettings("alice", "7am", "22:00", true), &verr)
	require.ErrorAs(t, svc.UpdateWaterSettings("alice", "07:00", "25:00", true), &verr)
}

func TestIdentityChange_SubscriptionSetsIdentity(t *testing.T) {
	gw := newFakeGateway()
	svc := NewProgressService(newTestCache(t), gw)
	svc.Start()
	defer svc.Stop()

	assert.Equal(t, models.AnonymousUserID, svc.CurrentIdentity())

	gw.mu.Lock()
	subs := append([]func(string){}, gw.subs...)
	gw.mu.Unlock()
	for _, cb := range subs {
		cb("alice")
	}

	assert.Eventually(t, func() bool {
		return svc.CurrentIdentity() == "alice"
	}, time.Second, 10*time.Millisecond)
}
