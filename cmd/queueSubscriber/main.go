package main

import (
	"encoding/json"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/messenger"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

// Reference consumer for the marketplace notification queues. It tails every
// queue, logs the notification and acknowledges it; downstream services start
// from here.

var messageService messenger.MessageService

func main() {
	config.Init("queueSubscriber")

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	messageService = container.GetMessenger()

	go pollOrders(messenger.ItemSold, "Item sold")
	go pollOrders(messenger.OrderCancelled, "Order cancelled")
	go pollListings(messenger.ItemGone, "Item gone")
	go pollListings(messenger.ItemNotAvailable, "Item not available")

	select {}
}

func pollOrders(item messenger.Item, what string) {
	zap.L().With(zap.String("queue", string(item))).Info("Subscribing")

	messages := make(chan *sqs.Message, 10)
	go messageService.PollMessages(item, messages)

	for message := range messages {
		var order entity.Order
		if err := json.Unmarshal([]byte(*message.Body), &order); err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", string(item))).Error("Failed to read message")
			continue
		}

		zap.L().With(
			zap.Uint64("orderId", order.OrderId),
			zap.Uint64("listingId", order.ListingId),
			zap.String("contract", order.Contract),
			zap.Uint64("tokenId", order.TokenId),
			zap.String("buyer", order.BuyerBech32),
			zap.String("seller", order.SellerBech32),
			zap.String("price", order.Price),
		).Info(what)

		if err := messageService.DeleteMessage(item, message); err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", string(item))).Error("Failed to delete message")
		}
	}
}

func pollListings(item messenger.Item, what string) {
	zap.L().With(zap.String("queue", string(item))).Info("Subscribing")

	messages := make(chan *sqs.Message, 10)
	go messageService.PollMessages(item, messages)

	for message := range messages {
		var listing entity.Listing
		if err := json.Unmarshal([]byte(*message.Body), &listing); err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", string(item))).Error("Failed to read message")
			continue
		}

		zap.L().With(
			zap.Uint64("listingId", listing.ListingId),
			zap.String("contract", listing.Contract),
			zap.Uint64("tokenId", listing.TokenId),
			zap.String("owner", listing.OwnerBech32),
		).Info(what)

		if err := messageService.DeleteMessage(item, message); err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", string(item))).Error("Failed to delete message")
		}
	}
}
