package factory

import (
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
)

func CreateListingAction(listing entity.Listing) entity.MarketAction {
	return entity.MarketAction{
		Action:       entity.ListingAction,
		ListingId:    listing.ListingId,
		Contract:     listing.Contract,
		TokenId:      listing.TokenId,
		Seller:       listing.Owner,
		SellerBech32: listing.OwnerBech32,
		Cost:         listing.Price,
		CreatedAt:    listing.CreatedAt,
	}
}

func CreateOrderAction(order entity.Order) entity.MarketAction {
	return entity.MarketAction{
		Action:       entity.OrderAction,
		ListingId:    order.ListingId,
		OrderId:      order.OrderId,
		Contract:     order.Contract,
		TokenId:      order.TokenId,
		Seller:       order.Seller,
		SellerBech32: order.SellerBech32,
		Buyer:        order.Buyer,
		BuyerBech32:  order.BuyerBech32,
		Cost:         order.Price,
		Fee:          order.PlatformFee,
		CreatedAt:    order.CreatedAt,
	}
}

func CreateSaleAction(order entity.Order) entity.MarketAction {
	return entity.MarketAction{
		Action:       entity.SaleAction,
		ListingId:    order.ListingId,
		OrderId:      order.OrderId,
		Contract:     order.Contract,
		TokenId:      order.TokenId,
		Seller:       order.Seller,
		SellerBech32: order.SellerBech32,
		Buyer:        order.Buyer,
		BuyerBech32:  order.BuyerBech32,
		Cost:         order.Price,
		Fee:          order.PlatformFee,
		CreatedAt:    time.Now(),
	}
}

func CreateDelistingAction(listing entity.Listing, reason string) entity.MarketAction {
	return entity.MarketAction{
		Action:       entity.DelistingAction,
		ListingId:    listing.ListingId,
		Contract:     listing.Contract,
		TokenId:      listing.TokenId,
		Seller:       listing.Owner,
		SellerBech32: listing.OwnerBech32,
		Cost:         listing.Price,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}
}

func CreateCancellationAction(order entity.Order, reason string) entity.MarketAction {
	return entity.MarketAction{
		Action:       entity.CancellationAction,
		ListingId:    order.ListingId,
		OrderId:      order.OrderId,
		Contract:     order.Contract,
		TokenId:      order.TokenId,
		Seller:       order.Seller,
		SellerBech32: order.SellerBech32,
		Buyer:        order.Buyer,
		BuyerBech32:  order.BuyerBech32,
		Cost:         order.Price,
		Fee:          order.PlatformFee,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}
}
