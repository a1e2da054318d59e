package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

const (
	collectionProducts  = "products"
	collectionBids      = "bids"
	collectionAsks      = "asks"
	collectionSales     = "sales"
	collectionWatchlist = "watchlist"
)

// ProductRepository implements ports.ProductRepository.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProductExists
		}
		return err
	}
	return nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var p domain.Product
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Trending(ctx context.Context, limit int64) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sales_count", Value: -1}}).SetLimit(limit)
	return r.list(ctx, bson.M{"status": "active"}, opts)
}

func (r *ProductRepository) PopularBrands(ctx context.Context, limit int64) ([]*domain.Product, error) {
	filter := bson.M{"brand": bson.M{"$exists": true, "$ne": ""}}
	opts := options.Find().SetSort(bson.D{{Key: "brand", Value: 1}}).SetLimit(limit)
	return r.list(ctx, filter, opts)
}

func (r *ProductRepository) NewArrivals(ctx context.Context, limit int64) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	return r.list(ctx, bson.M{}, opts)
}

// ApplySale atomically bumps the sales counter and last-sale aggregates.
func (r *ProductRepository) ApplySale(ctx context.Context, productID string, price float64, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{"sales_count": 1},
		"$set": bson.M{
			"last_sale_price": price,
			"last_sale_date":  at.UTC(),
			"updated_at":      time.Now().UTC(),
		},
	}
	res, err := r.col.UpdateByID(ctx, productID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Product, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var products []*domain.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sales_count", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// BidRepository and AskRepository persist standing marketplace orders.
type BidRepository struct {
	col *mongo.Collection
}

func NewBidRepository(db *mongo.Database) *BidRepository {
	return &BidRepository{col: db.Collection(collectionBids)}
}

func (r *BidRepository) Create(ctx context.Context, b *domain.Bid) error {
	_, err := r.col.InsertOne(ctx, b)
	return err
}

func (r *BidRepository) ListByVariant(ctx context.Context, variantID string) ([]*domain.Bid, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"variant_id": variantID, "status": domain.OrderStatusActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var bids []*domain.Bid
	if err := cur.All(ctx, &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

type AskRepository struct {
	col *mongo.Collection
}

func NewAskRepository(db *mongo.Database) *AskRepository {
	return &AskRepository{col: db.Collection(collectionAsks)}
}

func (r *AskRepository) Create(ctx context.Context, a *domain.Ask) error {
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *AskRepository) ListByVariant(ctx context.Context, variantID string) ([]*domain.Ask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"variant_id": variantID, "status": domain.OrderStatusActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var asks []*domain.Ask
	if err := cur.All(ctx, &asks); err != nil {
		return nil, err
	}
	return asks, nil
}

// SaleRepository persists completed transactions.
type SaleRepository struct {
	col *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) *SaleRepository {
	return &SaleRepository{col: db.Collection(collectionSales)}
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) error {
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *SaleRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.Sale, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sale_date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sales []*domain.Sale
	if err := cur.All(ctx, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// WatchlistRepository persists (user, variant) watch entries.
type WatchlistRepository struct {
	col *mongo.Collection
}

func NewWatchlistRepository(db *mongo.Database) *WatchlistRepository {
	return &WatchlistRepository{col: db.Collection(collectionWatchlist)}
}

// Add upserts on the composite key so re-watching updates preferences.
func (r *WatchlistRepository) Add(ctx context.Context, item *domain.WatchlistItem) error {
	filter := bson.M{"user_id": item.UserID, "variant_id": item.VariantID}
	update := bson.M{
		"$set": bson.M{
			"desired_price":     item.DesiredPrice,
			"notify_on_price":   item.NotifyOnPrice,
			"notify_on_restock": item.NotifyOnRestock,
		},
		"$setOnInsert": bson.M{"created_at": item.CreatedAt},
	}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *WatchlistRepository) Remove(ctx context.Context, userID, variantID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID, "variant_id": variantID})
	return err
}

func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]*domain.WatchlistItem, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *WatchlistRepository) ListByVariant(ctx context.Context, variantID string) ([]*domain.WatchlistItem, error) {
	return r.list(ctx, bson.M{"variant_id": variantID})
}

func (r *WatchlistRepository) list(ctx context.Context, filter bson.M) ([]*domain.WatchlistItem, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []*domain.WatchlistItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *WatchlistRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "variant_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
