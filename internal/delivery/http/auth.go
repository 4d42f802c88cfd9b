package http

import (
	"net/http"

	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAuth(base *echo.Group, authGuard echo.MiddlewareFunc) {
	auth := base.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", h.Me, authGuard)
	}
}

func (h *HttpAPIHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	user, err := h.service.AuthService.Register(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *HttpAPIHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	token, err := h.service.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

func (h *HttpAPIHandler) Me(c echo.Context) error {
	user, err := h.service.AuthService.Me(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
