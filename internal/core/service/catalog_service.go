package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

const browseLimit = 20

// CatalogService covers product browsing and marketplace orders.
type CatalogService struct {
	products  ports.ProductRepository
	bids      ports.BidRepository
	asks      ports.AskRepository
	sales     ports.SaleRepository
	watchlist ports.WatchlistRepository
	users     ports.UserRepository
	notifier  ports.Notifier
	log       zerolog.Logger
}

func NewCatalogService(
	products ports.ProductRepository,
	bids ports.BidRepository,
	asks ports.AskRepository,
	sales ports.SaleRepository,
	watchlist ports.WatchlistRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		products:  products,
		bids:      bids,
		asks:      asks,
		sales:     sales,
		watchlist: watchlist,
		users:     users,
		notifier:  notifier,
		log:       log,
	}
}

func (s *CatalogService) Trending(ctx context.Context) ([]*domain.Product, error) {
	return s.products.Trending(ctx, browseLimit)
}

func (s *CatalogService) PopularBrands(ctx context.Context) ([]*domain.Product, error) {
	return s.products.PopularBrands(ctx, browseLimit)
}

func (s *CatalogService) NewArrivals(ctx context.Context) ([]*domain.Product, error) {
	return s.products.NewArrivals(ctx, browseLimit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	p := &domain.Product{
		ID:           uuid.NewString(),
		Brand:        in.Brand,
		StyleID:      in.StyleID,
		Name:         in.Name,
		Slug:         in.Slug,
		Description:  in.Description,
		Colorway:     in.Colorway,
		RetailPrice:  in.RetailPrice,
		Gender:       in.Gender,
		ThumbnailURL: in.ThumbnailURL,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", p.ID).Str("slug", p.Slug).Msg("product created")
	return p, nil
}

func (s *CatalogService) PlaceBid(ctx context.Context, in ports.PlaceBidInput) (*domain.Bid, error) {
	b := &domain.Bid{
		ID:        uuid.NewString(),
		VariantID: in.VariantID,
		BuyerID:   in.BuyerID,
		Price:     in.Price,
		Status:    domain.OrderStatusActive,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.bids.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}
	return b, nil
}

func (s *CatalogService) ListBids(ctx context.Context, variantID string) ([]*domain.Bid, error) {
	return s.bids.ListByVariant(ctx, variantID)
}

// PlaceAsk lists a variant for sale and alerts watchers whose desired price
// is met. Alerting is best effort and never fails the listing.
func (s *CatalogService) PlaceAsk(ctx context.Context, in ports.PlaceAskInput) (*domain.Ask, error) {
	a := &domain.Ask{
		ID:        uuid.NewString(),
		VariantID: in.VariantID,
		SellerID:  in.SellerID,
		Price:     in.Price,
		Condition: in.Condition,
		Status:    domain.OrderStatusActive,
		IsInstant: in.IsInstant,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.asks.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("place ask: %w", err)
	}
	s.notifyWatchers(ctx, a)
	return a, nil
}

func (s *CatalogService) ListAsks(ctx context.Context, variantID string) ([]*domain.Ask, error) {
	return s.asks.ListByVariant(ctx, variantID)
}

func (s *CatalogService) RecordSale(ctx context.Context, in ports.RecordSaleInput) (*domain.Sale, error) {
	sale := &domain.Sale{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		BuyerID:   in.BuyerID,
		SalePrice: in.SalePrice,
		SaleDate:  time.Now().UTC(),
		Status:    "completed",
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}
	if err := s.products.ApplySale(ctx, in.ProductID, in.SalePrice, sale.SaleDate); err != nil {
		// The sale row is the source of truth; the product aggregate can
		// lag behind it.
		s.log.Warn().Err(err).Str("product_id", in.ProductID).Msg("failed to update product sale aggregates")
	}
	return sale, nil
}

func (s *CatalogService) ListSales(ctx context.Context, productID string) ([]*domain.Sale, error) {
	return s.sales.ListByProduct(ctx, productID)
}

func (s *CatalogService) Watch(ctx context.Context, in ports.WatchInput) error {
	return s.watchlist.Add(ctx, &domain.WatchlistItem{
		UserID:          in.UserID,
		VariantID:       in.VariantID,
		DesiredPrice:    in.DesiredPrice,
		NotifyOnPrice:   in.NotifyOnPrice,
		NotifyOnRestock: in.NotifyOnRestock,
		CreatedAt:       time.Now().UTC(),
	})
}

func (s *CatalogService) Unwatch(ctx context.Context, userID, variantID string) error {
	return s.watchlist.Remove(ctx, userID, variantID)
}

func (s *CatalogService) Watchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error) {
	return s.watchlist.ListByUser(ctx, userID)
}

func (s *CatalogService) notifyWatchers(ctx context.Context, ask *domain.Ask) {
	items, err := s.watchlist.ListByVariant(ctx, ask.VariantID)
	if err != nil {
		s.log.Warn().Err(err).Str("variant_id", ask.VariantID).Msg("watchlist lookup failed")
		return
	}
	for _, item := range items {
		if !item.NotifyOnPrice || ask.Price > item.DesiredPrice {
			continue
		}
		watcher, err := s.users.FindByID(ctx, item.UserID)
		if err != nil || watcher.Email == "" {
			continue
		}
		s.notifier.Enqueue(ports.Mail{
			To:      watcher.Email,
			Subject: "Price alert",
			HTML: fmt.Sprintf("<p>An ask at %.2f just listed for a variant on your watchlist (target %.2f).</p>",
				ask.Price, item.DesiredPrice),
		})
	}
}
