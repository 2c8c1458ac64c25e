// controllers/sync_controller.go
package controllers

import (
	"net/http"
	"time"

	"mindboost/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type SyncController struct {
	Hub *services.SyncHub
}

func NewSyncController(hub *services.SyncHub) *SyncController {
	return &SyncController{Hub: hub}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // tighten behind a proxy if needed
}

// SyncWS streams sync-status events (propagation outcomes, reconcile
// results, water reminders) to the caller's websocket.
func (sc *SyncController) SyncWS(c *gin.Context) {
	userID := userIDFromCtx(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{UserID: userID, Conn: conn}
	sc.Hub.Register(cl)

	// ping to keep connections alive through some proxies
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			if err := cl.Ping(); err != nil {
				sc.Hub.Unregister(cl)
				return
			}
		}
	}()

	// read loop ends on client close/error → unregister
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			sc.Hub.Unregister(cl)
			return
		}
	}
}
