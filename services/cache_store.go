package services

import (
	"encoding/json"
	"errors"
	"log"

	"mindboost/models"

	"gorm.io/gorm"
)

// Cache keys. Each collection is serialized independently so a corrupt entry
// for one key never blocks loading the others.
const (
	CacheKeyGameScores         = "mindboost:game_scores"
	CacheKeyWaterLogs          = "mindboost:water_logs"
	CacheKeyMeditationSessions = "mindboost:meditation_sessions"
	CacheKeyMusicTracks        = "mindboost:music_tracks"
	CacheKeyWaterSettings      = "mindboost:water_settings"
)

// CacheStore is the device-local fallback cache: a key-value table whose
// values are JSON snapshots of each record collection. Loads never fail —
// absent or corrupt entries come back as the zero value for the key.
type CacheStore struct {
	db *gorm.DB
}

func NewCacheStore(db *gorm.DB) *CacheStore {
	return &CacheStore{db: db}
}

// Save serializes v and writes it under key. Writes are synchronous; the
// caller's mutation is durable locally once Save returns.
func (s *CacheStore) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: marshal %s failed: %v", key, err)
		return
	}
	entry := models.CacheEntry{Key: key, Value: data}
	if err := s.db.Save(&entry).Error; err != nil {
		log.Printf("cache: save %s failed: %v", key, err)
	}
}

// Load reads key into out. Returns false and leaves out untouched when the
// entry is absent or its JSON is corrupt; corruption is logged, not surfaced.
func (s *CacheStore) Load(key string, out any) bool {
	var entry models.CacheEntry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("cache: load %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		log.Printf("cache: corrupt entry for %s, using defaults: %v", key, err)
		return false
	}
	return true
}
