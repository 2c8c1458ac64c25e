package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"mindboost/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGateway is an in-memory Gateway. Rows for SelectRecords are keyed by
// table (plus game type for game_scores); any operation can be forced to fail.
type fakeGateway struct {
	mu sync.Mutex

	rows        map[string][]map[string]any
	inserts     map[string][]map[string]any
	recDeletes  []string
	fileDeletes []string

	failInsert     bool
	failSelect     map[string]bool
	failDeleteRec  bool
	failDeleteFile bool

	identity string
	subs     []func(string)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		rows:       make(map[string][]map[string]any),
		inserts:    make(map[string][]map[string]any),
		failSelect: make(map[string]bool),
	}
}

func selectKey(table string, filter RecordFilter) string {
	if filter.GameType != "" {
		return table + ":" + filter.GameType
	}
	return table
}

func (f *fakeGateway) InsertRecord(_ context.Context, table string, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return &GatewayError{Kind: GatewayUnavailable, Op: "insert " + table, Err: errors.New("offline")}
	}
	f.inserts[table] = append(f.inserts[table], payload)
	return nil
}

func (f *fakeGateway) SelectRecords(_ context.Context, table string, filter RecordFilter) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := selectKey(table, filter)
	if f.failSelect[key] || f.failSelect[table] {
		return nil, &GatewayError{Kind: GatewayUnavailable, Op: "select " + table, Err: errors.New("offline")}
	}
	return f.rows[key], nil
}

func (f *fakeGateway) DeleteRecord(_ context.Context, table, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeleteRec {
		return &GatewayError{Kind: GatewayUnavailable, Op: "delete " + table, Err: errors.New("offline")}
	}
	f.recDeletes = append(f.recDeletes, fmt.Sprintf("%s/%s/%s", table, id, userID))
	return nil
}

func (f *fakeGateway) UploadFile(_ context.Context, _, path string, _ []byte, _ string) (string, error) {
	return "https://cdn.example.com/" + path, nil
}

func (f *fakeGateway) DeleteFile(_ context.Context, _, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeleteFile {
		return &GatewayError{Kind: GatewayUnavailable, Op: "delete file " + path, Err: errors.New("offline")}
	}
	f.fileDeletes = append(f.fileDeletes, path)
	return nil
}

func (f *fakeGateway) OnIdentityChange(cb func(string)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, cb)
	current := f.identity
	f.mu.Unlock()
	cb(current)
	return func() {}
}

func (f *fakeGateway) insertCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserts[table])
}

func newTestCache(t *testing.T) *CacheStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cache.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open cache db: %v", err)
	}
	if err := db.AutoMigrate(&models.CacheEntry{}); err != nil {
		t.Fatalf("migrate cache db: %v", err)
	}
	return NewCacheStore(db)
}
