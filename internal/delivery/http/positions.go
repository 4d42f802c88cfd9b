package http

import (
	"net/http"

	"github.com/autobotela-sys/zap-trading/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupPositions(base *echo.Group, authGuard echo.MiddlewareFunc) {
	base.GET("/positions", h.GetPositions, authGuard)
}

func (h *HttpAPIHandler) GetPositions(c echo.Context) error {
	positions, err := h.service.PositionService.GetPositions(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, positions)
}
