package entity

import (
	"crypto/md5"
	"fmt"
	"time"
)

// MarketAction is the audit record written for every marketplace state
// change. One document per (action, listing, order) combination.
type MarketAction struct {
	Action       ActionType `json:"action"`
	ListingId    uint64     `json:"listingId"`
	OrderId      uint64     `json:"orderId"`
	Contract     string     `json:"contract"`
	TokenId      uint64     `json:"tokenId"`
	Seller       string     `json:"seller"`
	SellerBech32 string     `json:"sellerBech32"`
	Buyer        string     `json:"buyer"`
	BuyerBech32  string     `json:"buyerBech32"`
	Cost         string     `json:"cost"`
	Fee          string     `json:"fee"`
	Reason       string     `json:"reason"`

	CreatedAt time.Time `json:"createdAt"`
}

type ActionType string

const (
	ListingAction      ActionType = "listing"
	OrderAction        ActionType = "order"
	SaleAction         ActionType = "sale"
	DelistingAction    ActionType = "delisting"
	CancellationAction ActionType = "cancellation"
)

func (a MarketAction) Slug() string {
	return CreateMarketActionSlug(a.ListingId, a.OrderId, a.Contract, string(a.Action))
}

func CreateMarketActionSlug(listingId, orderId uint64, contract, action string) string {
	data := []byte(fmt.Sprintf("marketaction-%d-%d-%s-%s", listingId, orderId, contract, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}
