// controllers/track_controller.go
package controllers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"mindboost/models"
	"mindboost/services"

	"github.com/gin-gonic/gin"
)

type TrackController struct {
	Svc *services.ProgressService
	GW  services.Gateway
}

func NewTrackController(svc *services.ProgressService, gw services.Gateway) *TrackController {
	return &TrackController{Svc: svc, GW: gw}
}

func (h *TrackController) GetAllTracks(c *gin.Context) {
	c.JSON(http.StatusOK, h.Svc.GetAllTracks(userIDFromCtx(c)))
}

func (h *TrackController) GetUserTracks(c *gin.Context) {
	c.JSON(http.StatusOK, h.Svc.GetUserTracks(userIDFromCtx(c)))
}

type trackUploadRequest struct {
	Title       string `json:"title" binding:"required"`
	Artist      string `json:"artist"`
	AudioBase64 string `json:"audio_base64" binding:"required"`
}

// UploadTrack stores the audio ("data:<mime>;base64,<data>") remotely and
// registers the track. Upload is a foreground user action: a storage failure
// is surfaced, not swallowed.
func (h *TrackController) UploadTrack(c *gin.Context) {
	var req trackUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	data, contentType, err := decodeBase64Audio(req.AudioBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := userIDFromCtx(c)
	key := fmt.Sprintf("tracks/%s-%d%s", userID, time.Now().UnixNano(), extensionFor(contentType))
	url, err := h.GW.UploadFile(c.Request.Context(), bucketName(), key, data, contentType)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed", "detail": err.Error()})
		return
	}

	track, err := h.Svc.AddUserTrack(userID, req.Title, req.Artist, url, time.Now())
	if err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, track)
}

// DeleteTrack removes the user's track. The track disappears locally even
// when the remote deletes fail; the failure is still reported.
func (h *TrackController) DeleteTrack(c *gin.Context) {
	trackID := c.Param("id")
	err := h.Svc.DeleteUserTrack(c.Request.Context(), userIDFromCtx(c), trackID)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusNotFound, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "deleted_locally": true})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- helpers ---

func bucketName() string { return os.Getenv("S3_BUCKET") }

func decodeBase64Audio(payload string) ([]byte, string, error) {
	parts := strings.Split(payload, ",")
	if len(parts) != 2 {
		return nil, "", fmt.Errorf("invalid base64 audio")
	}
	meta := parts[0] // "data:audio/mpeg;base64"
	mediaType := strings.SplitN(meta, ":", 2)
	if len(mediaType) != 2 {
		return nil, "", fmt.Errorf("invalid base64 audio header")
	}
	contentType := strings.SplitN(mediaType[1], ";", 2)[0]

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode audio: %v", err)
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		return "." + parts[1]
	}
	return ""
}
