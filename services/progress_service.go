package services

import (
	"context"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"mindboost/models"

	"github.com/google/uuid"
)

// ProgressService owns the canonical in-memory view of every record kind and
// is the only writer to it. Mutations land in memory and the local cache
// synchronously; remote propagation is fire-and-forget. Identity changes
// from the gateway trigger reconciliation (see reconcile.go).
type ProgressService struct {
	cache *CacheStore
	gw    Gateway

	mu       sync.Mutex
	identity string // current user id, AnonymousUserID when signed out

	gameScores  []models.GameScoreRecord
	waterLogs   []models.WaterLogRecord
	meditations []models.MeditationSessionRecord
	musicTracks []models.MusicTrackRecord
	settings    map[string]models.WaterSettings // per user

	unsubscribe func()
}

func NewProgressService(cache *CacheStore, gw Gateway) *ProgressService {
	s := &ProgressService{
		cache:    cache,
		gw:       gw,
		identity: models.AnonymousUserID,
		settings: make(map[string]models.WaterSettings),
	}
	s.loadFromCache()
	return s
}

// loadFromCache seeds the in-memory collections from the device cache.
// Each key loads independently; a corrupt entry leaves that collection empty.
func (s *ProgressService) loadFromCache() {
	s.cache.Load(CacheKeyGameScores, &s.gameScores)
	s.cache.Load(CacheKeyWaterLogs, &s.waterLogs)
	s.cache.Load(CacheKeyMeditationSessions, &s.meditations)
	s.cache.Load(CacheKeyMusicTracks, &s.musicTracks)
	s.cache.Load(CacheKeyWaterSettings, &s.settings)
	if s.settings == nil {
		s.settings = make(map[string]models.WaterSettings)
	}
}

// Start subscribes to gateway auth transitions. The callback also fires once
// with the current identity, so startup reconciliation happens here too.
func (s *ProgressService) Start() {
	s.unsubscribe = s.gw.OnIdentityChange(func(userID string) {
		if userID == "" {
			userID = models.AnonymousUserID
		}
		s.mu.Lock()
		s.identity = userID
		s.mu.Unlock()

		go func() {
			if err := s.reconcileFor(context.Background(), userID); err != nil {
				log.Printf("reconcile for %s failed, keeping local state: %v", userID, err)
			}
		}()
	})
}

func (s *ProgressService) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// CurrentIdentity returns the user id of the signed-in user, or
// AnonymousUserID when nobody is.
func (s *ProgressService) CurrentIdentity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// ---------- Game scores ----------

func (s *ProgressService) AddMatchingScore(userID string, score, attempts, durationSec int) error {
	rec := models.GameScoreRecord{
		GameType:    models.GameMatching,
		UserID:      userID,
		DurationSec: durationSec,
		Score:       score,
		Attempts:    attempts,
	}
	return s.appendScore(rec)
}

func (s *ProgressService) AddNumberRecallScore(userID string, identified, total int, comments string, durationSec int) error {
	rec := models.GameScoreRecord{
		GameType:        models.GameNumberRecall,
		UserID:          userID,
		DurationSec:     durationSec,
		IdentifiedCount: identified,
		TotalCount:      total,
		Comments:        comments,
	}
	return s.appendScore(rec)
}

func (s *ProgressService) AddObjectSequencingScore(userID string, isCorrect bool, attempts, durationSec int) error {
	rec := models.GameScoreRecord{
		GameType:    models.GameObjectSequencing,
		UserID:      userID,
		DurationSec: durationSec,
		IsCorrect:   isCorrect,
		Attempts:    attempts,
	}
	return s.appendScore(rec)
}

func (s *ProgressService) AddStroopScore(userID string, row, column, durationSec int) error {
	rec := models.GameScoreRecord{
		GameType:    models.GameStroopTest,
		UserID:      userID,
		DurationSec: durationSec,
		Row:         row,
		Column:      column,
	}
	return s.appendScore(rec)
}

func (s *ProgressService) appendScore(rec models.GameScoreRecord) error {
	if rec.UserID == "" {
		rec.UserID = models.AnonymousUserID
	}
	if rec.DurationSec < 0 {
		return &models.ValidationError{Field: "duration", Reason: "must not be negative"}
	}

	s.mu.Lock()
	s.gameScores = append(s.gameScores, rec)
	s.cache.Save(CacheKeyGameScores, s.gameScores)
	s.mu.Unlock()

	s.propagate(TableGameScores, map[string]any{
		"user_id":   rec.UserID,
		"game_type": rec.GameType,
		"score":     rec.ScorePayload(),
		"comments":  rec.Comments,
	}, rec.UserID)
	return nil
}

// GetScoresByType returns the user's scores for one game, insertion order.
func (s *ProgressService) GetScoresByType(userID, gameType string) []models.GameScoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.GameScoreRecord
	for _, r := range s.gameScores {
		if r.UserID == userID && r.GameType == gameType {
			out = append(out, r)
		}
	}
	return out
}

// GetRecentScores returns up to limit of the user's scores, newest first.
func (s *ProgressService) GetRecentScores(userID string, limit int) []models.GameScoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.GameScoreRecord
	for i := len(s.gameScores) - 1; i >= 0 && len(out) < limit; i-- {
		if s.gameScores[i].UserID == userID {
			out = append(out, s.gameScores[i])
		}
	}
	return out
}

// ---------- Water ----------

func (s *ProgressService) AddWaterLog(userID string, amountML int, now time.Time) error {
	if amountML <= 0 {
		return &models.ValidationError{Field: "amount", Reason: "must be a positive number of milliliters"}
	}
	if userID == "" {
		userID = models.AnonymousUserID
	}
	rec := models.WaterLogRecord{
		Timestamp: now.UnixMilli(),
		UserID:    userID,
		AmountML:  amountML,
	}

	s.mu.Lock()
	s.waterLogs = append(s.waterLogs, rec)
	s.cache.Save(CacheKeyWaterLogs, s.waterLogs)
	s.mu.Unlock()

	s.propagate(TableWaterLogs, map[string]any{
		"user_id":    rec.UserID,
		"amount":     rec.AmountML,
		"created_at": rec.Timestamp,
	}, rec.UserID)
	return nil
}

// ---------- Meditation ----------

func (s *ProgressService) AddMeditationSession(userID string, durationSec int, improvement *int, now time.Time) error {
	if durationSec < 0 {
		return &models.ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	if improvement != nil && (*improvement < 0 || *improvement > 100) {
		return &models.ValidationError{Field: "concentration_improvement", Reason: "must be between 0 and 100"}
	}
	if userID == "" {
		userID = models.AnonymousUserID
	}
	rec := models.MeditationSessionRecord{
		Timestamp:                now.UnixMilli(),
		UserID:                   userID,
		DurationSec:              durationSec,
		ConcentrationImprovement: improvement,
	}

	s.mu.Lock()
	s.meditations = append(s.meditations, rec)
	s.cache.Save(CacheKeyMeditationSessions, s.meditations)
	s.mu.Unlock()

	payload := map[string]any{
		"user_id":    rec.UserID,
		"duration":   rec.DurationSec,
		"created_at": rec.Timestamp,
	}
	if rec.ConcentrationImprovement != nil {
		payload["concentration_improvement"] = *rec.ConcentrationImprovement
	}
	s.propagate(TableMeditationSessions, payload, rec.UserID)
	return nil
}

// ---------- Music tracks ----------

// AddBuiltInTrack registers a bundled track. Built-in tracks belong to
// nobody and stay local; reconciliation merges the remote catalog on top.
func (s *ProgressService) AddBuiltInTrack(title, artist, filePath string) models.MusicTrackRecord {
	rec := models.MusicTrackRecord{
		ID:        uuid.NewString(),
		Title:     title,
		Artist:    artist,
		IsBuiltIn: true,
		FilePath:  filePath,
	}

	s.mu.Lock()
	s.musicTracks = append(s.musicTracks, rec)
	s.cache.Save(CacheKeyMusicTracks, s.musicTracks)
	s.mu.Unlock()
	return rec
}

func (s *ProgressService) AddUserTrack(userID, title, artist, filePath string, now time.Time) (models.MusicTrackRecord, error) {
	if title == "" {
		return models.MusicTrackRecord{}, &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if filePath == "" {
		return models.MusicTrackRecord{}, &models.ValidationError{Field: "file_path", Reason: "must not be empty"}
	}
	if userID == "" {
		userID = models.AnonymousUserID
	}
	rec := models.MusicTrackRecord{
		ID:         uuid.NewString(),
		Title:      title,
		Artist:     artist,
		FilePath:   filePath,
		UserID:     userID,
		UploadTime: now.UnixMilli(),
	}

	s.mu.Lock()
	s.musicTracks = append(s.musicTracks, rec)
	s.cache.Save(CacheKeyMusicTracks, s.musicTracks)
	s.mu.Unlock()

	s.propagate(TableMusicTracks, map[string]any{
		"id":          rec.ID,
		"title":       rec.Title,
		"artist":      rec.Artist,
		"is_built_in": false,
		"file_path":   rec.FilePath,
		"user_id":     rec.UserID,
		"upload_time": rec.UploadTime,
	}, rec.UserID)
	return rec, nil
}

// DeleteUserTrack removes the user's track. Local removal happens first and
// is never rolled back; remote file and record deletes are best-effort, and
// their error is returned so a foreground caller can show it.
func (s *ProgressService) DeleteUserTrack(ctx context.Context, userID, trackID string) error {
	s.mu.Lock()
	var deleted *models.MusicTrackRecord
	kept := s.musicTracks[:0]
	for _, t := range s.musicTracks {
		if t.ID == trackID && t.OwnedBy(userID) {
			track := t
			deleted = &track
			continue
		}
		kept = append(kept, t)
	}
	s.musicTracks = kept
	if deleted != nil {
		s.cache.Save(CacheKeyMusicTracks, s.musicTracks)
	}
	s.mu.Unlock()

	if deleted == nil {
		return &models.ValidationError{Field: "track_id", Reason: "no such track for this user"}
	}
	if userID == models.AnonymousUserID {
		return nil // never reached the remote in the first place
	}

	var firstErr error
	if key := objectKeyFromURL(deleted.FilePath); key != "" {
		if err := s.gw.DeleteFile(ctx, musicBucket(), key); err != nil {
			log.Printf("track %s: remote file delete failed: %v", trackID, err)
			firstErr = err
		}
	}
	if err := s.gw.DeleteRecord(ctx, TableMusicTracks, trackID, userID); err != nil {
		log.Printf("track %s: remote record delete failed: %v", trackID, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		EmitSyncEvent(userID, SyncFailed, TableMusicTracks, firstErr)
	} else {
		EmitSyncEvent(userID, SyncOK, TableMusicTracks, nil)
	}
	return firstErr
}

// GetAllTracks returns built-in tracks plus the user's own uploads.
func (s *ProgressService) GetAllTracks(userID string) []models.MusicTrackRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.MusicTrackRecord
	for _, t := range s.musicTracks {
		if t.IsBuiltIn || t.OwnedBy(userID) {
			out = append(out, t)
		}
	}
	return out
}

// GetUserTracks returns the user's own uploads only.
func (s *ProgressService) GetUserTracks(userID string) []models.MusicTrackRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.MusicTrackRecord
	for _, t := range s.musicTracks {
		if t.OwnedBy(userID) {
			out = append(out, t)
		}
	}
	return out
}

// ---------- Water settings ----------

// GetWaterSettings returns the user's settings, defaults if never set.
func (s *ProgressService) GetWaterSettings(userID string) models.WaterSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws, ok := s.settings[userID]; ok {
		return ws
	}
	return models.DefaultWaterSettings()
}

// SetDailyWaterGoal updates only the goal, leaving the schedule untouched.
// Goal and schedule share one settings record, so the two update paths can
// no longer race on overlapping fields.
func (s *ProgressService) SetDailyWaterGoal(userID string, goalML int) error {
	if goalML <= 0 {
		return &models.ValidationError{Field: "daily_goal_ml", Reason: "must be positive"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.settings[userID]
	if !ok {
		ws = models.DefaultWaterSettings()
	}
	ws.DailyGoalML = goalML
	s.settings[userID] = ws
	s.cache.Save(CacheKeyWaterSettings, s.settings)
	return nil
}

// UpdateWaterSettings updates the reminder schedule, leaving the goal untouched.
func (s *ProgressService) UpdateWaterSettings(userID, wakeUpTime, sleepTime string, remindersEnabled bool) error {
	if _, err := parseClock(wakeUpTime); err != nil {
		return &models.ValidationError{Field: "wake_up_time", Reason: "must be HH:MM"}
	}
	if _, err := parseClock(sleepTime); err != nil {
		return &models.ValidationError{Field: "sleep_time", Reason: "must be HH:MM"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.settings[userID]
	if !ok {
		ws = models.DefaultWaterSettings()
	}
	ws.WakeUpTime = wakeUpTime
	ws.SleepTime = sleepTime
	ws.RemindersEnabled = remindersEnabled
	s.settings[userID] = ws
	s.cache.Save(CacheKeyWaterSettings, s.settings)
	return nil
}

// ---------- internals ----------

// propagate pushes a freshly appended record to the remote gateway without
// blocking the caller. Anonymous records never leave the device. Failures
// are logged and emitted on the sync bus, never rolled back.
func (s *ProgressService) propagate(table string, payload map[string]any, userID string) {
	if userID == models.AnonymousUserID || userID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.gw.InsertRecord(ctx, table, payload); err != nil {
			log.Printf("sync: insert into %s for %s failed: %v", table, userID, err)
			EmitSyncEvent(userID, SyncFailed, table, err)
			return
		}
		EmitSyncEvent(userID, SyncOK, table, nil)
	}()
}

func musicBucket() string { return os.Getenv("S3_BUCKET") }

// objectKeyFromURL recovers the storage key from a track's public URL.
func objectKeyFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
