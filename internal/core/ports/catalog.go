package ports

import (
	"context"
	"time"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

// ProductRepository defines persistence for catalog products.
type ProductRepository interface {
	// Create returns domain.ErrProductExists on a slug collision.
	Create(ctx context.Context, p *domain.Product) error
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// Trending returns active products ordered by sales count descending.
	Trending(ctx context.Context, limit int64) ([]*domain.Product, error)
	// PopularBrands returns branded products ordered by brand name.
	PopularBrands(ctx context.Context, limit int64) ([]*domain.Product, error)
	// NewArrivals returns products ordered by creation time descending.
	NewArrivals(ctx context.Context, limit int64) ([]*domain.Product, error)
	// ApplySale bumps the sales counter and last-sale aggregates.
	ApplySale(ctx context.Context, productID string, price float64, at time.Time) error
}

type BidRepository interface {
	Create(ctx context.Context, b *domain.Bid) error
	ListByVariant(ctx context.Context, variantID string) ([]*domain.Bid, error)
}

type AskRepository interface {
	Create(ctx context.Context, a *domain.Ask) error
	ListByVariant(ctx context.Context, variantID string) ([]*domain.Ask, error)
}

type SaleRepository interface {
	Create(ctx context.Context, s *domain.Sale) error
	ListByProduct(ctx context.Context, productID string) ([]*domain.Sale, error)
}

type WatchlistRepository interface {
	// Add is an upsert on (user, variant).
	Add(ctx context.Context, item *domain.WatchlistItem) error
	Remove(ctx context.Context, userID, variantID string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.WatchlistItem, error)
	ListByVariant(ctx context.Context, variantID string) ([]*domain.WatchlistItem, error)
}

// CreateProductInput carries the admin product-creation payload.
type CreateProductInput struct {
	Brand        string
	StyleID      string
	Name         string
	Slug         string
	Description  string
	Colorway     string
	RetailPrice  float64
	Gender       string
	ThumbnailURL string
}

// PlaceBidInput / PlaceAskInput carry marketplace order payloads.
type PlaceBidInput struct {
	VariantID string
	BuyerID   string
	Price     float64
	ExpiresAt *time.Time
}

type PlaceAskInput struct {
	VariantID string
	SellerID  string
	Price     float64
	Condition string
	IsInstant bool
	ExpiresAt *time.Time
}

// RecordSaleInput carries a completed transaction.
type RecordSaleInput struct {
	ProductID string
	BuyerID   string
	SalePrice float64
}

// WatchInput adds a variant to a user's watchlist.
type WatchInput struct {
	UserID          string
	VariantID       string
	DesiredPrice    float64
	NotifyOnPrice   bool
	NotifyOnRestock bool
}

// CatalogService covers product browsing and marketplace operations.
type CatalogService interface {
	Trending(ctx context.Context) ([]*domain.Product, error)
	PopularBrands(ctx context.Context) ([]*domain.Product, error)
	NewArrivals(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)

	PlaceBid(ctx context.Context, in PlaceBidInput) (*domain.Bid, error)
	ListBids(ctx context.Context, variantID string) ([]*domain.Bid, error)
	PlaceAsk(ctx context.Context, in PlaceAskInput) (*domain.Ask, error)
	ListAsks(ctx context.Context, variantID string) ([]*domain.Ask, error)

	RecordSale(ctx context.Context, in RecordSaleInput) (*domain.Sale, error)
	ListSales(ctx context.Context, productID string) ([]*domain.Sale, error)

	Watch(ctx context.Context, in WatchInput) error
	Unwatch(ctx context.Context, userID, variantID string) error
	Watchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error)
}
