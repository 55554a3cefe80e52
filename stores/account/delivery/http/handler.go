package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/delivery"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/account"
	"github.com/bidhaus/goapi/middleware"
	authMiddleware "github.com/bidhaus/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	account account.Usecase
}

func New(e *echo.Echo, account account.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{account}

	g := e.Group("/account/:address", middleware.IsValidAddress("address"))

	g.GET("", h.get)

	g.GET("/nonce", h.getNonce)

	gm := e.Group("/account")

	gm.PUT("", h.updateProfile, authMiddleware.Auth())
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	address := domain.Address(c.Param("address"))

	if res, err := h.account.Get(ctx, address); err == domain.ErrNotFound {
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	} else if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

// getNonce hands out the one-time nonce to sign for /auth/sign
func (h *handler) getNonce(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	address := domain.Address(c.Param("address"))

	if res, err := h.account.GenerateNonce(ctx, address); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) updateProfile(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	address := c.Get("address").(domain.Address)

	type params struct {
		Alias *string `json:"alias"`
		Email *string `json:"email"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if res, err := h.account.UpdateProfile(ctx, address, p.Alias, p.Email); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}
