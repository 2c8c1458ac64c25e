// controllers/progress_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mindboost/models"
	"mindboost/services"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Svc *services.ProgressService
}

func NewProgressController(svc *services.ProgressService) *ProgressController {
	return &ProgressController{Svc: svc}
}

func (h *ProgressController) AddMatchingScore(c *gin.Context) {
	var req struct {
		Score    int `json:"score"`
		Attempts int `json:"attempts"`
		Duration int `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.AddMatchingScore(userIDFromCtx(c), req.Score, req.Attempts, req.Duration); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProgressController) AddNumberRecallScore(c *gin.Context) {
	var req struct {
		IdentifiedCount int    `json:"identified_count"`
		TotalCount      int    `json:"total_count"`
		Comments        string `json:"comments"`
		Duration        int    `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.AddNumberRecallScore(userIDFromCtx(c), req.IdentifiedCount, req.TotalCount, req.Comments, req.Duration); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProgressController) AddObjectSequencingScore(c *gin.Context) {
	var req struct {
		IsCorrect bool `json:"is_correct"`
		Attempts  int  `json:"attempts"`
		Duration  int  `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.AddObjectSequencingScore(userIDFromCtx(c), req.IsCorrect, req.Attempts, req.Duration); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProgressController) AddStroopScore(c *gin.Context) {
	var req struct {
		Row      int `json:"row"`
		Column   int `json:"column"`
		Duration int `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.AddStroopScore(userIDFromCtx(c), req.Row, req.Column, req.Duration); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProgressController) GetScoresByType(c *gin.Context) {
	gameType := c.Param("gameType")
	scores := h.Svc.GetScoresByType(userIDFromCtx(c), gameType)
	c.JSON(http.StatusOK, scores)
}

func (h *ProgressController) GetRecentScores(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	c.JSON(http.StatusOK, h.Svc.GetRecentScores(userIDFromCtx(c), limit))
}

func (h *ProgressController) AddWaterLog(c *gin.Context) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.AddWaterLog(userIDFromCtx(c), req.Amount, nowFromCtx(c)); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProgressController) AddMeditationSession(c *gin.Context) {
	var req struct {
		Duration                 int  `json:"duration"`
		ConcentrationImprovement *int `json:"concentration_improvement"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.AddMeditationSession(userIDFromCtx(c), req.Duration, req.ConcentrationImprovement, nowFromCtx(c)); err != nil {
		respondMutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Refresh triggers an explicit reconciliation for the current identity.
// Unlike background runs, failures surface to the caller here.
func (h *ProgressController) Refresh(c *gin.Context) {
	if err := h.Svc.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- helpers shared by the controllers ---

func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return models.AnonymousUserID
}

// nowFromCtx lets callers pin the clock with ?now=RFC3339; defaults to the
// server's local time.
func nowFromCtx(c *gin.Context) time.Time {
	if v := c.Query("now"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.Local()
		}
	}
	return time.Now()
}

func respondMutationError(c *gin.Context, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
