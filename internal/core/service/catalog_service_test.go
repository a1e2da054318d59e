package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

type stubProductRepo struct {
	bySlug   map[string]*domain.Product
	applyErr error
	applied  []string // product ids
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{bySlug: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if _, ok := r.bySlug[p.Slug]; ok {
		return domain.ErrProductExists
	}
	cp := *p
	r.bySlug[p.Slug] = &cp
	return nil
}

func (r *stubProductRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	if p, ok := r.bySlug[slug]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) all() []*domain.Product {
	out := make([]*domain.Product, 0, len(r.bySlug))
	for _, p := range r.bySlug {
		out = append(out, p)
	}
	return out
}

func (r *stubProductRepo) Trending(_ context.Context, limit int64) ([]*domain.Product, error) {
	out := r.all()
	sort.Slice(out, func(i, j int) bool { return out[i].SalesCount > out[j].SalesCount })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubProductRepo) PopularBrands(_ context.Context, limit int64) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0)
	for _, p := range r.all() {
		if p.Brand != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) NewArrivals(_ context.Context, limit int64) ([]*domain.Product, error) {
	out := r.all()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubProductRepo) ApplySale(_ context.Context, productID string, price float64, at time.Time) error {
	if r.applyErr != nil {
		return r.applyErr
	}
	for _, p := range r.bySlug {
		if p.ID == productID {
			p.SalesCount++
			p.LastSalePrice = price
			p.LastSaleDate = &at
		}
	}
	r.applied = append(r.applied, productID)
	return nil
}

type stubBidRepo struct{ bids []*domain.Bid }

func (r *stubBidRepo) Create(_ context.Context, b *domain.Bid) error {
	r.bids = append(r.bids, b)
	return nil
}

func (r *stubBidRepo) ListByVariant(_ context.Context, variantID string) ([]*domain.Bid, error) {
	out := make([]*domain.Bid, 0)
	for _, b := range r.bids {
		if b.VariantID == variantID {
			out = append(out, b)
		}
	}
	return out, nil
}

type stubAskRepo struct{ asks []*domain.Ask }

func (r *stubAskRepo) Create(_ context.Context, a *domain.Ask) error {
	r.asks = append(r.asks, a)
	return nil
}

func (r *stubAskRepo) ListByVariant(_ context.Context, variantID string) ([]*domain.Ask, error) {
	out := make([]*domain.Ask, 0)
	for _, a := range r.asks {
		if a.VariantID == variantID {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubSaleRepo struct {
	sales     []*domain.Sale
	createErr error
}

func (r *stubSaleRepo) Create(_ context.Context, s *domain.Sale) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.sales = append(r.sales, s)
	return nil
}

func (r *stubSaleRepo) ListByProduct(_ context.Context, productID string) ([]*domain.Sale, error) {
	out := make([]*domain.Sale, 0)
	for _, s := range r.sales {
		if s.ProductID == productID {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubWatchlistRepo struct{ items []*domain.WatchlistItem }

func (r *stubWatchlistRepo) Add(_ context.Context, item *domain.WatchlistItem) error {
	for i, existing := range r.items {
		if existing.UserID == item.UserID && existing.VariantID == item.VariantID {
			r.items[i] = item
			return nil
		}
	}
	r.items = append(r.items, item)
	return nil
}

func (r *stubWatchlistRepo) Remove(_ context.Context, userID, variantID string) error {
	kept := r.items[:0]
	for _, item := range r.items {
		if item.UserID != userID || item.VariantID != variantID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *stubWatchlistRepo) ListByUser(_ context.Context, userID string) ([]*domain.WatchlistItem, error) {
	out := make([]*domain.WatchlistItem, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *stubWatchlistRepo) ListByVariant(_ context.Context, variantID string) ([]*domain.WatchlistItem, error) {
	out := make([]*domain.WatchlistItem, 0)
	for _, item := range r.items {
		if item.VariantID == variantID {
			out = append(out, item)
		}
	}
	return out, nil
}

type catalogFixture struct {
	products  *stubProductRepo
	bids      *stubBidRepo
	asks      *stubAskRepo
	sales     *stubSaleRepo
	watchlist *stubWatchlistRepo
	users     *stubUserRepo
	notifier  *stubNotifier
	svc       *CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		products:  newStubProductRepo(),
		bids:      &stubBidRepo{},
		asks:      &stubAskRepo{},
		sales:     &stubSaleRepo{},
		watchlist: &stubWatchlistRepo{},
		users:     newStubUserRepo(),
		notifier:  &stubNotifier{},
	}
	f.svc = NewCatalogService(f.products, f.bids, f.asks, f.sales, f.watchlist, f.users, f.notifier, zerolog.Nop())
	return f
}

func TestCatalogService_CreateProduct(t *testing.T) {
	f := newCatalogFixture()

	p, err := f.svc.CreateProduct(context.Background(), ports.CreateProductInput{
		Brand: "Jordan", Name: "Air Jordan 1", Slug: "air-jordan-1", RetailPrice: 180,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" || p.Status != "active" {
		t.Errorf("unexpected product: %+v", p)
	}

	_, err = f.svc.CreateProduct(context.Background(), ports.CreateProductInput{
		Name: "Duplicate", Slug: "air-jordan-1",
	})
	if !errors.Is(err, domain.ErrProductExists) {
		t.Errorf("expected ErrProductExists on slug collision, got: %v", err)
	}
}

func TestCatalogService_RecordSale_UpdatesAggregates(t *testing.T) {
	f := newCatalogFixture()
	p, err := f.svc.CreateProduct(context.Background(), ports.CreateProductInput{
		Name: "Air Jordan 1", Slug: "air-jordan-1",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	sale, err := f.svc.RecordSale(context.Background(), ports.RecordSaleInput{
		ProductID: p.ID, BuyerID: "u1", SalePrice: 250,
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if sale.Status != "completed" {
		t.Errorf("unexpected sale status: %q", sale.Status)
	}

	stored := f.products.bySlug["air-jordan-1"]
	if stored.SalesCount != 1 || stored.LastSalePrice != 250 {
		t.Errorf("expected aggregates updated, got count=%d price=%v", stored.SalesCount, stored.LastSalePrice)
	}
}

func TestCatalogService_RecordSale_AggregateFailureIsNonFatal(t *testing.T) {
	f := newCatalogFixture()
	f.products.applyErr = errors.New("mongo unavailable")

	// The sale row is the source of truth; the denormalised product
	// aggregate may lag.
	if _, err := f.svc.RecordSale(context.Background(), ports.RecordSaleInput{
		ProductID: "p1", SalePrice: 250,
	}); err != nil {
		t.Fatalf("aggregate failure must not fail the sale, got: %v", err)
	}
	if len(f.sales.sales) != 1 {
		t.Error("expected sale recorded")
	}
}

func TestCatalogService_PlaceAsk_NotifiesWatchersAtTargetPrice(t *testing.T) {
	f := newCatalogFixture()
	f.users.add(&domain.User{ID: "watcher", Email: "watcher@example.com"})
	if err := f.svc.Watch(context.Background(), ports.WatchInput{
		UserID: "watcher", VariantID: "v1", DesiredPrice: 200, NotifyOnPrice: true,
	}); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if _, err := f.svc.PlaceAsk(context.Background(), ports.PlaceAskInput{
		VariantID: "v1", SellerID: "seller", Price: 180, Condition: "new",
	}); err != nil {
		t.Fatalf("place ask: %v", err)
	}

	if len(f.notifier.sent) != 1 || f.notifier.sent[0].To != "watcher@example.com" {
		t.Errorf("expected price alert for the watcher, got: %v", f.notifier.sent)
	}
}

func TestCatalogService_PlaceAsk_NoAlertAboveTargetPrice(t *testing.T) {
	f := newCatalogFixture()
	f.users.add(&domain.User{ID: "watcher", Email: "watcher@example.com"})
	if err := f.svc.Watch(context.Background(), ports.WatchInput{
		UserID: "watcher", VariantID: "v1", DesiredPrice: 150, NotifyOnPrice: true,
	}); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if _, err := f.svc.PlaceAsk(context.Background(), ports.PlaceAskInput{
		VariantID: "v1", SellerID: "seller", Price: 180,
	}); err != nil {
		t.Fatalf("place ask: %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("ask above the target price must not alert, got: %v", f.notifier.sent)
	}
}

func TestCatalogService_Watchlist_AddRemove(t *testing.T) {
	f := newCatalogFixture()

	if err := f.svc.Watch(context.Background(), ports.WatchInput{UserID: "u1", VariantID: "v1"}); err != nil {
		t.Fatalf("watch: %v", err)
	}
	// Watching the same variant again must not duplicate the entry.
	if err := f.svc.Watch(context.Background(), ports.WatchInput{UserID: "u1", VariantID: "v1", DesiredPrice: 100}); err != nil {
		t.Fatalf("re-watch: %v", err)
	}

	items, err := f.svc.Watchlist(context.Background(), "u1")
	if err != nil {
		t.Fatalf("watchlist: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one entry per (user, variant), got %d", len(items))
	}
	if items[0].DesiredPrice != 100 {
		t.Errorf("re-watch must update the entry, got: %+v", items[0])
	}

	if err := f.svc.Unwatch(context.Background(), "u1", "v1"); err != nil {
		t.Fatalf("unwatch: %v", err)
	}
	items, _ = f.svc.Watchlist(context.Background(), "u1")
	if len(items) != 0 {
		t.Errorf("expected empty watchlist, got: %v", items)
	}
}

func TestCatalogService_BidsAndAsksByVariant(t *testing.T) {
	f := newCatalogFixture()

	if _, err := f.svc.PlaceBid(context.Background(), ports.PlaceBidInput{VariantID: "v1", BuyerID: "u1", Price: 120}); err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if _, err := f.svc.PlaceBid(context.Background(), ports.PlaceBidInput{VariantID: "v2", BuyerID: "u1", Price: 90}); err != nil {
		t.Fatalf("place bid: %v", err)
	}

	bids, err := f.svc.ListBids(context.Background(), "v1")
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	if len(bids) != 1 || bids[0].Price != 120 {
		t.Errorf("expected only v1 bids, got: %v", bids)
	}
	if bids[0].Status != domain.OrderStatusActive {
		t.Errorf("new bids must be active, got: %q", bids[0].Status)
	}
}
