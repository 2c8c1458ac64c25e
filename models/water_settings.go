package models

// WaterSettings is the single per-user hydration settings record. The daily
// goal and the reminder schedule used to be written through two separate
// paths; they are unified here so the two entry points can no longer race
// on overlapping fields.
type WaterSettings struct {
	WakeUpTime       string `json:"wake_up_time"` // "HH:MM"
	SleepTime        string `json:"sleep_time"`   // "HH:MM"
	RemindersEnabled bool   `json:"reminders_enabled"`
	DailyGoalML      int    `json:"daily_goal_ml"`
}

// DefaultWaterSettings are applied when nothing has been persisted yet.
func DefaultWaterSettings() WaterSettings {
	return WaterSettings{
		WakeUpTime:       "07:00",
		SleepTime:        "22:00",
		RemindersEnabled: true,
		DailyGoalML:      2000,
	}
}
