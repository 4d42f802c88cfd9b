package http

import (
	"net/http"

	"github.com/autobotela-sys/zap-trading/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// browser clients connect cross-origin from the SPA
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *HttpAPIHandler) SetupWebsocket() {
	h.echo.GET("/ws/positions", h.PositionsWebsocket)
}

// PositionsWebsocket upgrades the connection and parks it in the hub
// until the client goes away. The token travels as a query param since
// browsers cannot set headers on websocket dials.
func (h *HttpAPIHandler) PositionsWebsocket(c echo.Context) error {
	userID, err := h.service.AuthService.VerifyToken(c.QueryParam("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid token"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.hub.Register(userID, conn)
	defer func() {
		h.hub.Unregister(userID, conn)
		_ = conn.Close()
	}()

	h.log.Debug("websocket session opened", logger.UintField("user_id", userID))

	// drain client frames; the hub writes, we only detect disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
