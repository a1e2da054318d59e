package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockdeck/marketplace-system/internal/api/metrics"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// TradeHandler exposes bids, asks, sales, and watchlist endpoints.
type TradeHandler struct {
	catalog ports.CatalogService
}

func NewTradeHandler(catalog ports.CatalogService) *TradeHandler {
	return &TradeHandler{catalog: catalog}
}

// PlaceBid handles POST /bids.
//
// @Summary      Place a bid
// @Tags         trade
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeBidRequest  true  "Bid"
// @Success      201   {object}  domain.Bid
// @Router       /bids [post]
func (h *TradeHandler) PlaceBid(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req placeBidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	bid, err := h.catalog.PlaceBid(c.Request().Context(), ports.PlaceBidInput{
		VariantID: req.VariantID,
		BuyerID:   userID,
		Price:     req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bid)
}

// ListBids handles GET /variants/:id/bids.
//
// @Summary      List active bids for a variant
// @Tags         trade
// @Produce      json
// @Param        id  path  string  true  "Variant id"
// @Success      200  {array}  domain.Bid
// @Router       /variants/{id}/bids [get]
func (h *TradeHandler) ListBids(c echo.Context) error {
	bids, err := h.catalog.ListBids(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bids)
}

// PlaceAsk handles POST /asks.
//
// @Summary      List a variant for sale
// @Tags         trade
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeAskRequest  true  "Ask"
// @Success      201   {object}  domain.Ask
// @Router       /asks [post]
func (h *TradeHandler) PlaceAsk(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req placeAskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ask, err := h.catalog.PlaceAsk(c.Request().Context(), ports.PlaceAskInput{
		VariantID: req.VariantID,
		SellerID:  userID,
		Price:     req.Price,
		Condition: req.Condition,
		IsInstant: req.IsInstant,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ask)
}

// ListAsks handles GET /variants/:id/asks.
//
// @Summary      List active asks for a variant
// @Tags         trade
// @Produce      json
// @Param        id  path  string  true  "Variant id"
// @Success      200  {array}  domain.Ask
// @Router       /variants/{id}/asks [get]
func (h *TradeHandler) ListAsks(c echo.Context) error {
	asks, err := h.catalog.ListAsks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, asks)
}

// RecordSale handles POST /sales (admin only).
//
// @Summary      Record a completed sale
// @Tags         trade
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      recordSaleRequest  true  "Sale"
// @Success      201   {object}  domain.Sale
// @Router       /sales [post]
func (h *TradeHandler) RecordSale(c echo.Context) error {
	var req recordSaleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	sale, err := h.catalog.RecordSale(c.Request().Context(), ports.RecordSaleInput{
		ProductID: req.ProductID,
		BuyerID:   req.BuyerID,
		SalePrice: req.SalePrice,
	})
	if err != nil {
		return err
	}
	metrics.SalesRecordedTotal.Inc()
	return c.JSON(http.StatusCreated, sale)
}

// ListSales handles GET /products/:id/sales.
//
// @Summary      List sales for a product
// @Tags         trade
// @Produce      json
// @Param        id  path  string  true  "Product id"
// @Success      200  {array}  domain.Sale
// @Router       /products/{id}/sales [get]
func (h *TradeHandler) ListSales(c echo.Context) error {
	sales, err := h.catalog.ListSales(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sales)
}

// Watch handles POST /watchlist.
//
// @Summary      Add a variant to the watchlist
// @Tags         watchlist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      watchRequest  true  "Watch entry"
// @Success      200   {object}  statusResponse
// @Router       /watchlist [post]
func (h *TradeHandler) Watch(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req watchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.catalog.Watch(c.Request().Context(), ports.WatchInput{
		UserID:          userID,
		VariantID:       req.VariantID,
		DesiredPrice:    req.DesiredPrice,
		NotifyOnPrice:   req.NotifyOnPrice,
		NotifyOnRestock: req.NotifyOnRestock,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// Unwatch handles DELETE /watchlist/:variantId.
//
// @Summary      Remove a variant from the watchlist
// @Tags         watchlist
// @Produce      json
// @Security     BearerAuth
// @Param        variantId  path  string  true  "Variant id"
// @Success      200  {object}  statusResponse
// @Router       /watchlist/{variantId} [delete]
func (h *TradeHandler) Unwatch(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.Unwatch(c.Request().Context(), userID, c.Param("variantId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// Watchlist handles GET /watchlist.
//
// @Summary      List the caller's watchlist
// @Tags         watchlist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.WatchlistItem
// @Router       /watchlist [get]
func (h *TradeHandler) Watchlist(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	items, err := h.catalog.Watchlist(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
