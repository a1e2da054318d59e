package domain

import (
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")
var ErrProductExists = errors.New("product already exists")

// Product is a catalog entry. Pricing aggregates (last sale, sales count)
// are denormalised onto the product and maintained by the sale path.
type Product struct {
	ID            string     `json:"id" bson:"_id"`
	Brand         string     `json:"brand,omitempty" bson:"brand,omitempty"`
	StyleID       string     `json:"style_id,omitempty" bson:"style_id,omitempty"`
	Name          string     `json:"name" bson:"name"`
	Slug          string     `json:"slug" bson:"slug"`
	Description   string     `json:"description,omitempty" bson:"description,omitempty"`
	Colorway      string     `json:"colorway,omitempty" bson:"colorway,omitempty"`
	RetailPrice   float64    `json:"retail_price,omitempty" bson:"retail_price,omitempty"`
	Gender        string     `json:"gender,omitempty" bson:"gender,omitempty"`
	ThumbnailURL  string     `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	Status        string     `json:"status" bson:"status"`
	LastSalePrice float64    `json:"last_sale_price,omitempty" bson:"last_sale_price,omitempty"`
	LastSaleDate  *time.Time `json:"last_sale_date,omitempty" bson:"last_sale_date,omitempty"`
	SalesCount    int64      `json:"sales_count" bson:"sales_count"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// BidStatus / AskStatus values share the same lifecycle vocabulary.
const (
	OrderStatusActive    = "active"
	OrderStatusMatched   = "matched"
	OrderStatusCancelled = "cancelled"
)

// Bid is a buyer's standing offer on a product variant.
type Bid struct {
	ID        string     `json:"id" bson:"_id"`
	VariantID string     `json:"variant_id" bson:"variant_id"`
	BuyerID   string     `json:"buyer_id" bson:"buyer_id"`
	Price     float64    `json:"price" bson:"price"`
	Status    string     `json:"status" bson:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// Ask is a seller's standing listing on a product variant.
type Ask struct {
	ID        string     `json:"id" bson:"_id"`
	VariantID string     `json:"variant_id" bson:"variant_id"`
	SellerID  string     `json:"seller_id" bson:"seller_id"`
	Price     float64    `json:"price" bson:"price"`
	Condition string     `json:"condition" bson:"condition"`
	Status    string     `json:"status" bson:"status"`
	IsInstant bool       `json:"is_instant" bson:"is_instant"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// Sale records a completed transaction on a product.
type Sale struct {
	ID        string    `json:"id" bson:"_id"`
	ProductID string    `json:"product_id" bson:"product_id"`
	BuyerID   string    `json:"buyer_id,omitempty" bson:"buyer_id,omitempty"`
	SalePrice float64   `json:"sale_price" bson:"sale_price"`
	SaleDate  time.Time `json:"sale_date" bson:"sale_date"`
	Status    string    `json:"status" bson:"status"`
}

// WatchlistItem tracks a user's interest in a variant. Identity is the
// (UserID, VariantID) pair.
type WatchlistItem struct {
	UserID          string    `json:"user_id" bson:"user_id"`
	VariantID       string    `json:"variant_id" bson:"variant_id"`
	DesiredPrice    float64   `json:"desired_price,omitempty" bson:"desired_price,omitempty"`
	NotifyOnPrice   bool      `json:"notify_on_price" bson:"notify_on_price"`
	NotifyOnRestock bool      `json:"notify_on_restock" bson:"notify_on_restock"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}
