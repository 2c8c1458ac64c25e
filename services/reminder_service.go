package services

import (
	"log"
	"time"

	"mindboost/models"

	"github.com/go-co-op/gocron"
)

// ReminderService periodically checks whether the signed-in user is inside
// their active hours and still short of the daily water goal, and emits a
// reminder event on the sync bus when so. Delivery beyond the hub (push,
// local notifications) is the client's concern.
type ReminderService struct {
	scheduler *gocron.Scheduler
	progress  *ProgressService
	analytics *AnalyticsService
}

func NewReminderService(p *ProgressService, a *AnalyticsService) *ReminderService {
	return &ReminderService{
		scheduler: gocron.NewScheduler(time.Local),
		progress:  p,
		analytics: a,
	}
}

// Start schedules the periodic check and returns immediately.
func (r *ReminderService) Start() {
	if _, err := r.scheduler.Every(15).Minutes().Do(r.checkAndRemind); err != nil {
		log.Printf("reminder: scheduling failed: %v", err)
		return
	}
	r.scheduler.StartAsync()
}

func (r *ReminderService) Stop() {
	r.scheduler.Stop()
}

func (r *ReminderService) checkAndRemind() {
	userID := r.progress.CurrentIdentity()
	if userID == models.AnonymousUserID {
		return
	}

	now := time.Now()
	ws := r.progress.GetWaterSettings(userID)
	if !ws.RemindersEnabled {
		return
	}
	if !IsActiveHour(now, ws.WakeUpTime, ws.SleepTime) {
		return
	}
	if r.analytics.WaterPercentageToday(now, userID) >= 100 {
		return
	}
	EmitSyncEvent(userID, ReminderWater, "", nil)
}
