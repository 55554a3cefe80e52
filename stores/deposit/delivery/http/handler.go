package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/delivery"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/deposit"
	authMiddleware "github.com/bidhaus/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	deposit deposit.UseCase
}

func New(e *echo.Echo, deposit deposit.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{deposit}

	g := e.Group("/deposits")

	g.GET("", h.getBalances, authMiddleware.Auth())

	g.POST("", h.createDeposit, authMiddleware.Auth())

	g.POST("/withdraw", h.withdraw, authMiddleware.Auth())
}

func statusOf(err error) int {
	switch err {
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidNumberFormat, domain.ErrBadParamInput:
		return http.StatusBadRequest
	case domain.ErrInsufficientFunds:
		return http.StatusUnprocessableEntity
	case domain.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) getBalances(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	owner := c.Get("address").(domain.Address)

	if res, err := h.deposit.GetBalances(ctx, owner); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) createDeposit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	owner := c.Get("address").(domain.Address)

	type params struct {
		PayToken domain.Address `json:"payToken"`
		Amount   string         `json:"amount"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if res, err := h.deposit.Deposit(ctx, owner, p.PayToken, p.Amount); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, res)
	}
}

func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	owner := c.Get("address").(domain.Address)

	type params struct {
		PayToken domain.Address `json:"payToken"`
		Amount   string         `json:"amount"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if res, err := h.deposit.Withdraw(ctx, owner, p.PayToken, p.Amount); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}
