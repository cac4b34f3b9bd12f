package entity

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderCancelled OrderStatus = "cancelled"
)

// Order captures the terms of a purchase at the moment it was placed. Price,
// PlatformFee and SellerAmount are fixed then, whatever the fee policy does
// afterwards. Status only ever moves pending -> fulfilled or
// pending -> cancelled.
type Order struct {
	OrderId      uint64      `json:"orderId"`
	ListingId    uint64      `json:"listingId"`
	Contract     string      `json:"contract"`
	TokenId      uint64      `json:"tokenId"`
	Price        string      `json:"price"`
	PlatformFee  string      `json:"platformFee"`
	SellerAmount string      `json:"sellerAmount"`
	Buyer        string      `json:"buyer"`
	BuyerBech32  string      `json:"buyerBech32"`
	Seller       string      `json:"seller"`
	SellerBech32 string      `json:"sellerBech32"`
	Status       OrderStatus `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
}

func (o Order) IsTerminal() bool {
	return o.Status == OrderFulfilled || o.Status == OrderCancelled
}

func (o Order) Slug() string {
	return CreateOrderSlug(o.OrderId)
}

func CreateOrderSlug(orderId uint64) string {
	return slug.Make(fmt.Sprintf("order-%d", orderId))
}
