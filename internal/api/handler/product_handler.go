package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// ProductHandler exposes catalog browsing and admin product creation.
type ProductHandler struct {
	catalog ports.CatalogService
}

func NewProductHandler(catalog ports.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// Trending handles GET /products/trending.
//
// @Summary      Trending products
// @Tags         products
// @Produce      json
// @Success      200  {array}  domain.Product
// @Router       /products/trending [get]
func (h *ProductHandler) Trending(c echo.Context) error {
	products, err := h.catalog.Trending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// PopularBrands handles GET /products/popular-brands.
//
// @Summary      Popular brands
// @Tags         products
// @Produce      json
// @Success      200  {array}  domain.Product
// @Router       /products/popular-brands [get]
func (h *ProductHandler) PopularBrands(c echo.Context) error {
	products, err := h.catalog.PopularBrands(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// NewArrivals handles GET /products/new-arrivals.
//
// @Summary      Newest products
// @Tags         products
// @Produce      json
// @Success      200  {array}  domain.Product
// @Router       /products/new-arrivals [get]
func (h *ProductHandler) NewArrivals(c echo.Context) error {
	products, err := h.catalog.NewArrivals(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Create handles POST /products (admin only).
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product details"
// @Success      201   {object}  domain.Product
// @Failure      409   {object}  errorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	product, err := h.catalog.CreateProduct(c.Request().Context(), ports.CreateProductInput{
		Brand:        req.Brand,
		StyleID:      req.StyleID,
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Colorway:     req.Colorway,
		RetailPrice:  req.RetailPrice,
		Gender:       req.Gender,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}
