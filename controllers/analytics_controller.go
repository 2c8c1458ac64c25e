// controllers/analytics_controller.go
package controllers

import (
	"net/http"

	"mindboost/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

func (h *AnalyticsController) GetTotalWaterToday(c *gin.Context) {
	total := h.Svc.TotalWaterToday(nowFromCtx(c), userIDFromCtx(c))
	c.JSON(http.StatusOK, gin.H{"total_ml": total})
}

func (h *AnalyticsController) GetWaterPercentage(c *gin.Context) {
	pct := h.Svc.WaterPercentageToday(nowFromCtx(c), userIDFromCtx(c))
	c.JSON(http.StatusOK, gin.H{"percentage": pct})
}

func (h *AnalyticsController) GetMeditationMinutesToday(c *gin.Context) {
	minutes := h.Svc.MeditationMinutesToday(nowFromCtx(c), userIDFromCtx(c))
	c.JSON(http.StatusOK, gin.H{"minutes": minutes})
}

func (h *AnalyticsController) GetDailySummary(c *gin.Context) {
	out := h.Svc.DailyProgressSummary(nowFromCtx(c), userIDFromCtx(c))
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsController) GetWeeklyHistory(c *gin.Context) {
	out := h.Svc.WeeklyProgressHistory(nowFromCtx(c), userIDFromCtx(c))
	c.JSON(http.StatusOK, out)
}
