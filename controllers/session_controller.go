// controllers/session_controller.go
package controllers

import (
	"net/http"

	"mindboost/services"

	"github.com/gin-gonic/gin"
)

// SessionController relays auth transitions from the client into the
// gateway's identity notifier. Authentication itself happens against the
// remote service; the client just tells us who it now is (or isn't), which
// kicks off reconciliation for that identity.
type SessionController struct {
	GW *services.RestGateway
}

func NewSessionController(gw *services.RestGateway) *SessionController {
	return &SessionController{GW: gw}
}

// BeginSession records a sign-in. The JWT middleware has already validated
// the token, so the identity comes from the request context.
func (h *SessionController) BeginSession(c *gin.Context) {
	userID := userIDFromCtx(c)
	h.GW.SetIdentity(userID)
	c.Status(http.StatusNoContent)
}

// EndSession records a sign-out; the view falls back to anonymous state.
func (h *SessionController) EndSession(c *gin.Context) {
	h.GW.SetIdentity("")
	c.Status(http.StatusNoContent)
}
