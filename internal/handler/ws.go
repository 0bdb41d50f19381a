package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler upgrades /ws and echoes every message back.
type WSHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(logger *zap.Logger) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The echo endpoint is origin-agnostic on purpose: the
			// dashboard may be served from another host during testing.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Echo handles WS /ws
func (h *WSHandler) Echo(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		if err := conn.WriteMessage(messageType, payload); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}
