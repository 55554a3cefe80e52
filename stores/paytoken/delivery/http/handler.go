package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/delivery"
	"github.com/bidhaus/goapi/domain"
	authMiddleware "github.com/bidhaus/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	payTokens domain.PayTokenRepo
}

func New(e *echo.Echo, payTokens domain.PayTokenRepo, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{payTokens}

	g := e.Group("/paytokens")

	g.GET("", h.list)

	g.PUT("", h.upsert, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

// list returns the erc20 tokens bids may be denominated in
func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId domain.ChainId `query:"chainId"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if res, err := h.payTokens.FindAll(ctx, p.ChainId); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) upsert(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &domain.PayToken{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if p.ChainId <= 0 || p.Address.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := h.payTokens.Upsert(ctx, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, p)
	}
}
