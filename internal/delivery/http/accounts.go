package http

import (
	"net/http"
	"strconv"

	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAccounts(base *echo.Group, authGuard echo.MiddlewareFunc) {
	accounts := base.Group("/accounts", authGuard)
	{
		accounts.GET("", h.ListAccounts)
		accounts.POST("", h.CreateAccount)
		accounts.DELETE("/:id", h.DeleteAccount)
		accounts.POST("/:id/request-token", h.RequestToken)
		accounts.POST("/set-token", h.SetToken)
	}
}

func (h *HttpAPIHandler) ListAccounts(c echo.Context) error {
	accounts, err := h.service.AccountService.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *HttpAPIHandler) CreateAccount(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	account, err := h.service.AccountService.Create(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *HttpAPIHandler) DeleteAccount(c echo.Context) error {
	accountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid account id"))
	}

	if err := h.service.AccountService.Delete(c.Request().Context(), middleware.UserID(c), uint(accountID)); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Account deleted", nil))
}

func (h *HttpAPIHandler) RequestToken(c echo.Context) error {
	accountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid account id"))
	}

	loginURL, err := h.service.SessionService.BeginLogin(c.Request().Context(), middleware.UserID(c), uint(accountID))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, loginURL)
}

func (h *HttpAPIHandler) SetToken(c echo.Context) error {
	var req dto.SetTokenRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	accessToken, err := h.service.SessionService.CompleteLogin(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Access token set successfully", map[string]string{
		"access_token": accessToken,
	}))
}
