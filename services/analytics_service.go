package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mindboost/models"
)

// AnalyticsService derives day- and week-bucketed aggregates from the
// progress service's collections. Every entry point takes the caller's
// "now" — nothing in here reads the clock, so tests can pin time.
type AnalyticsService struct {
	progress *ProgressService
}

func NewAnalyticsService(p *ProgressService) *AnalyticsService {
	return &AnalyticsService{progress: p}
}

// DailySummary is one day's progress figures.
type DailySummary struct {
	Date              time.Time `json:"date"`
	GameScoresCount   int       `json:"game_scores_count"`
	MeditationMinutes int       `json:"meditation_minutes"`
	WaterPercentage   int       `json:"water_percentage"`
}

// TotalWaterToday sums the user's water logged since local midnight.
func (a *AnalyticsService) TotalWaterToday(now time.Time, userID string) int {
	start := StartOfDay(now)
	logs := a.waterSnapshot()
	return TotalWaterSince(logs, start, start.AddDate(0, 0, 1), userID)
}

// WaterPercentageToday is today's total against the user's daily goal.
func (a *AnalyticsService) WaterPercentageToday(now time.Time, userID string) int {
	total := a.TotalWaterToday(now, userID)
	goal := a.progress.GetWaterSettings(userID).DailyGoalML
	return WaterPercentage(total, goal)
}

// MeditationMinutesToday rounds the user's meditation seconds since local
// midnight to whole minutes.
func (a *AnalyticsService) MeditationMinutesToday(now time.Time, userID string) int {
	start := StartOfDay(now)
	sessions := a.meditationSnapshot()
	return MeditationMinutesSince(sessions, start, start.AddDate(0, 0, 1), userID)
}

// DailyProgressSummary builds today's summary. The game count is the user's
// total across all time, not today's — the mobile app always displayed the
// all-time figure under the daily heading and callers depend on it.
func (a *AnalyticsService) DailyProgressSummary(now time.Time, userID string) DailySummary {
	return DailySummary{
		Date:              StartOfDay(now),
		GameScoresCount:   a.gameScoreCount(userID),
		MeditationMinutes: a.MeditationMinutesToday(now, userID),
		WaterPercentage:   a.WaterPercentageToday(now, userID),
	}
}

// WeeklyProgressHistory returns seven summaries for now and the preceding
// six days, most recent first. Water and meditation are day-bucketed; the
// game count repeats the all-time figure on every day (same quirk as the
// daily summary, kept for compatibility).
func (a *AnalyticsService) WeeklyProgressHistory(now time.Time, userID string) []DailySummary {
	logs := a.waterSnapshot()
	sessions := a.meditationSnapshot()
	goal := a.progress.GetWaterSettings(userID).DailyGoalML
	games := a.gameScoreCount(userID)

	out := make([]DailySummary, 0, 7)
	for i := 0; i < 7; i++ {
		day := StartOfDay(now).AddDate(0, 0, -i)
		next := day.AddDate(0, 0, 1)
		out = append(out, DailySummary{
			Date:              day,
			GameScoresCount:   games,
			MeditationMinutes: MeditationMinutesSince(sessions, day, next, userID),
			WaterPercentage:   WaterPercentage(TotalWaterSince(logs, day, next, userID), goal),
		})
	}
	return out
}

func (a *AnalyticsService) gameScoreCount(userID string) int {
	a.progress.mu.Lock()
	defer a.progress.mu.Unlock()

	n := 0
	for _, r := range a.progress.gameScores {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

func (a *AnalyticsService) waterSnapshot() []models.WaterLogRecord {
	a.progress.mu.Lock()
	defer a.progress.mu.Unlock()
	return append([]models.WaterLogRecord(nil), a.progress.waterLogs...)
}

func (a *AnalyticsService) meditationSnapshot() []models.MeditationSessionRecord {
	a.progress.mu.Lock()
	defer a.progress.mu.Unlock()
	return append([]models.MeditationSessionRecord(nil), a.progress.meditations...)
}

// ---------- pure helpers ----------

// StartOfDay floors t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TotalWaterSince sums the user's water amounts with timestamps in
// [start, end).
func TotalWaterSince(logs []models.WaterLogRecord, start, end time.Time, userID string) int {
	from, to := start.UnixMilli(), end.UnixMilli()
	total := 0
	for _, l := range logs {
		if l.UserID == userID && l.Timestamp >= from && l.Timestamp < to {
			total += l.AmountML
		}
	}
	return total
}

// WaterPercentage is total/goal as a rounded percentage, capped at 100.
// A non-positive goal yields 0 rather than dividing through.
func WaterPercentage(total, goal int) int {
	if goal <= 0 {
		return 0
	}
	pct := int(math.Round(float64(total) / float64(goal) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// MeditationMinutesSince rounds the user's meditation seconds in [start, end)
// to whole minutes.
func MeditationMinutesSince(sessions []models.MeditationSessionRecord, start, end time.Time, userID string) int {
	from, to := start.UnixMilli(), end.UnixMilli()
	seconds := 0
	for _, m := range sessions {
		if m.UserID == userID && m.Timestamp >= from && m.Timestamp < to {
			seconds += m.DurationSec
		}
	}
	return int(math.Round(float64(seconds) / 60))
}

// IsActiveHour reports whether now's minute-of-day falls in [wake, sleep).
// A sleep time earlier than wake means the window wraps past midnight: the
// window is active from wake until sleep the next morning. Malformed clock
// strings yield false.
func IsActiveHour(now time.Time, wakeUpTime, sleepTime string) bool {
	wake, err := parseClock(wakeUpTime)
	if err != nil {
		return false
	}
	sleep, err := parseClock(sleepTime)
	if err != nil {
		return false
	}
	cur := now.Hour()*60 + now.Minute()

	switch {
	case wake == sleep:
		return false
	case wake < sleep:
		return cur >= wake && cur < sleep
	default: // overnight window
		return cur >= wake || cur < sleep
	}
}

// parseClock converts "HH:MM" to minutes past midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
