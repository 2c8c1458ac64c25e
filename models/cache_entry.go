package models

// CacheEntry is one row of the device-local key-value cache. Value holds the
// JSON-serialized collection (or settings record) for that key.
type CacheEntry struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value []byte `gorm:"type:blob"`
}
