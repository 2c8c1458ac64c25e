// controllers/settings_controller.go
package controllers

import (
	"net/http"

	"mindboost/services"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	Svc *services.ProgressService
}

func NewSettingsController(svc *services.ProgressService) *SettingsController {
	return &SettingsController{Svc: svc}
}

func (h *SettingsController) GetWaterSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Svc.GetWaterSettings(userIDFromCtx(c)))
}

// SetDailyWaterGoal and UpdateWaterSettings are separate entry points the
// client already calls; both write the same unified settings record.
func (h *SettingsController) SetDailyWaterGoal(c *gin.Context) {
	var req struct {
		DailyGoalML int `json:"daily_goal_ml"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.SetDailyWaterGoal(userIDFromCtx(c), req.DailyGoalML); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SettingsController) UpdateWaterSettings(c *gin.Context) {
	var req struct {
		WakeUpTime       string `json:"wake_up_time" binding:"required"`
		SleepTime        string `json:"sleep_time" binding:"required"`
		RemindersEnabled bool   `json:"reminders_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.UpdateWaterSettings(userIDFromCtx(c), req.WakeUpTime, req.SleepTime, req.RemindersEnabled); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
