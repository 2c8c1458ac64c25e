package models

// WaterLogRecord is one "add water" action. Timestamp is epoch milliseconds;
// AmountML must be a positive number of milliliters. Records are append-only.
type WaterLogRecord struct {
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"user_id"`
	AmountML  int    `json:"amount"`
}

// DecodeWaterLogRow normalizes a raw gateway row. The remote stores the
// creation time as created_at epoch ms; missing fields default to zero.
func DecodeWaterLogRow(row map[string]any) WaterLogRecord {
	return WaterLogRecord{
		Timestamp: int64Field(row, "created_at"),
		UserID:    stringField(row, "user_id"),
		AmountML:  intField(row, "amount"),
	}
}

func int64Field(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
