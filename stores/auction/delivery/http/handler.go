package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bidhaus/goapi/base/ctx"
	"github.com/bidhaus/goapi/base/delivery"
	"github.com/bidhaus/goapi/domain"
	"github.com/bidhaus/goapi/domain/auction"
	"github.com/bidhaus/goapi/middleware"
	authMiddleware "github.com/bidhaus/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	auction auction.UseCase
	events  auction.EventRepo
}

func New(e *echo.Echo, auction auction.UseCase, events auction.EventRepo, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{auction, events}

	gs := e.Group("/auctions")

	gs.GET("", h.search, middleware.CacheHttp(10*time.Second))

	gs.GET("/count", h.count)

	gs.POST("", h.create, authMiddleware.Auth())

	g := e.Group("/auction/:auctionId")

	g.GET("", h.get)

	g.GET("/events", h.getEvents)

	g.POST("/bids", h.placeBid, authMiddleware.Auth())

	g.POST("/refund", h.withdrawRefund, authMiddleware.Auth())

	g.POST("/end", h.end)

	g.DELETE("", h.cancel, authMiddleware.Auth())

	gf := e.Group("/fee/:chainId")

	gf.GET("", h.getFeeSettings)

	gf.GET("/quote", h.quoteFee)

	gf.PUT("", h.setFeeSettings, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

// statusOf translates domain sentinels into http statuses so handlers
// stay declarative.
func statusOf(err error) int {
	switch err {
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	case domain.ErrBadParamInput,
		domain.ErrInvalidChainId,
		domain.ErrInvalidDuration,
		domain.ErrInvalidNumberFormat,
		domain.ErrInvalidCurrency,
		domain.ErrFeeTooHigh:
		return http.StatusBadRequest
	case domain.ErrUnauthorizedAsset:
		return http.StatusForbidden
	case domain.ErrBidTooLow,
		domain.ErrBelowReserve,
		domain.ErrAuctionClosed,
		domain.ErrAuctionNotYetEndable,
		domain.ErrSelfBid,
		domain.ErrNoRefundAvailable,
		domain.ErrInsufficientFunds:
		return http.StatusUnprocessableEntity
	case domain.ErrTransferFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	seller := c.Get("address").(domain.Address)

	type params struct {
		ChainId      domain.ChainId `json:"chainId"`
		Collection   domain.Address `json:"collection"`
		TokenId      domain.TokenId `json:"tokenId"`
		ReservePrice string         `json:"reservePrice"`
		PayToken     domain.Address `json:"payToken"`
		Duration     int64          `json:"duration"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	payload := auction.CreateAuctionPayload{
		ChainId: p.ChainId,
		Seller:  seller,
		Asset: auction.AssetRef{
			ChainId:    p.ChainId,
			Collection: p.Collection,
			TokenId:    p.TokenId,
		},
		ReservePrice: auction.DenominatedAmount{
			Amount:   p.ReservePrice,
			PayToken: p.PayToken,
		},
		Duration: p.Duration,
	}

	if res, err := h.auction.CreateAuction(ctx, payload); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, res)
	}
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id := c.Param("auctionId")

	if res, err := h.auction.GetAuction(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId    *domain.ChainId `query:"chainId"`
		Seller     *domain.Address `query:"seller"`
		Collection *domain.Address `query:"collection"`
		TokenId    *domain.TokenId `query:"tokenId"`
		State      *auction.State  `query:"state"`
		Offset     int32           `query:"offset"`
		Limit      int32           `query:"limit"`
		SortBy     *string         `query:"sortBy"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []auction.FindAllOptionsFunc{}

	if p.Offset != 0 || p.Limit != 0 {
		opts = append(opts, auction.WithPagination(p.Offset, p.Limit))
	} else {
		opts = append(opts, auction.WithPagination(0, 100))
	}

	if p.ChainId != nil {
		opts = append(opts, auction.WithChainId(*p.ChainId))
	}

	if p.Seller != nil {
		opts = append(opts, auction.WithSeller(*p.Seller))
	}

	if p.Collection != nil && p.TokenId != nil {
		opts = append(opts, auction.WithAsset(*p.Collection, *p.TokenId))
	}

	if p.State != nil {
		opts = append(opts, auction.WithState(*p.State))
	}

	if p.SortBy != nil {
		opts = append(opts, auction.WithSort(*p.SortBy))
	} else {
		opts = append(opts, auction.WithSort("-createdAt"))
	}

	items, count, err := h.auction.SearchAuctions(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}

	res := struct {
		Items []*auction.Auction `json:"items"`
		Count int                `json:"count"`
	}{
		Items: items,
		Count: count,
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) count(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId domain.ChainId `query:"chainId"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if res, err := h.auction.GetAuctionsCount(ctx, p.ChainId); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) getEvents(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id := c.Param("auctionId")

	type params struct {
		Type   *auction.EventType `query:"type"`
		Actor  *domain.Address    `query:"actor"`
		Offset int32              `query:"offset"`
		Limit  int32              `query:"limit"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []auction.EventFindAllOptionsFunc{
		auction.WithEventAuctionId(id),
	}

	if p.Type != nil {
		opts = append(opts, auction.WithEventType(*p.Type))
	}

	if p.Actor != nil {
		opts = append(opts, auction.WithEventActor(*p.Actor))
	}

	if p.Offset != 0 || p.Limit != 0 {
		opts = append(opts, auction.WithEventPagination(p.Offset, p.Limit))
	} else {
		opts = append(opts, auction.WithEventPagination(0, 100))
	}

	if res, err := h.events.FindAll(ctx, opts...); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) placeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	bidder := c.Get("address").(domain.Address)

	id := c.Param("auctionId")

	type params struct {
		Amount   string         `json:"amount"`
		PayToken domain.Address `json:"payToken"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	payload := auction.PlaceBidPayload{
		Bidder: bidder,
		Amount: auction.DenominatedAmount{
			Amount:   p.Amount,
			PayToken: p.PayToken,
		},
	}

	if res, err := h.auction.PlaceBid(ctx, id, payload); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, res)
	}
}

func (h *handler) withdrawRefund(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	bidder := c.Get("address").(domain.Address)

	id := c.Param("auctionId")

	if res, err := h.auction.WithdrawRefund(ctx, id, bidder); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) end(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id := c.Param("auctionId")

	if res, err := h.auction.EndAuction(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	seller := c.Get("address").(domain.Address)

	id := c.Param("auctionId")

	if res, err := h.auction.CancelAuction(ctx, id, seller); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) getFeeSettings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId domain.ChainId `param:"chainId"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if res, err := h.auction.GetFeeSettings(ctx, p.ChainId); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) quoteFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId domain.ChainId `param:"chainId"`
		Amount  string         `query:"amount"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if res, err := h.auction.CalculateFee(ctx, p.ChainId, p.Amount); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}

func (h *handler) setFeeSettings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		ChainId    domain.ChainId `param:"chainId"`
		Percentage int64          `json:"percentage"`
		Recipient  domain.Address `json:"recipient"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	settings := auction.FeeSettings{
		Percentage: p.Percentage,
		Recipient:  p.Recipient,
	}

	if err := h.auction.SetFeeSettings(ctx, p.ChainId, settings); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, "ok")
	}
}
