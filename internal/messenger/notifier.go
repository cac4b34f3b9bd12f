package messenger

import (
	"encoding/json"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/event"
	"go.uber.org/zap"
)

// Notifier publishes marketplace outcomes to their queues so downstream
// consumers (indexers, mailers) never poll the order book directly.
type Notifier interface {
	NotifyItemSold(el interface{})
	NotifyItemNotAvailable(el interface{})
	NotifyItemGone(el interface{})
	NotifyOrderCancelled(el interface{})
}

type notifier struct {
	messenger MessageService
}

func NewNotifier(messenger MessageService) Notifier {
	n := notifier{messenger}

	event.AddEventListener(event.ItemSoldEvent, n.NotifyItemSold)
	event.AddEventListener(event.ItemNotAvailableEvent, n.NotifyItemNotAvailable)
	event.AddEventListener(event.ItemGoneEvent, n.NotifyItemGone)
	event.AddEventListener(event.OrderCancelledEvent, n.NotifyOrderCancelled)

	return n
}

func (n notifier) NotifyItemSold(el interface{}) {
	order, ok := el.(entity.Order)
	if !ok {
		return
	}

	n.publish(ItemSold, order, zap.Uint64("orderId", order.OrderId))
}

func (n notifier) NotifyItemNotAvailable(el interface{}) {
	listing, ok := el.(entity.Listing)
	if !ok {
		return
	}

	n.publish(ItemNotAvailable, listing, zap.Uint64("listingId", listing.ListingId))
}

func (n notifier) NotifyItemGone(el interface{}) {
	listing, ok := el.(entity.Listing)
	if !ok {
		return
	}

	n.publish(ItemGone, listing, zap.Uint64("listingId", listing.ListingId))
}

func (n notifier) NotifyOrderCancelled(el interface{}) {
	order, ok := el.(entity.Order)
	if !ok {
		return
	}

	n.publish(OrderCancelled, order, zap.Uint64("orderId", order.OrderId))
}

func (n notifier) publish(item Item, payload interface{}, fields ...zap.Field) {
	body, err := json.Marshal(payload)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to marshal notification")
		return
	}

	if err := n.messenger.SendMessage(item, body); err != nil {
		zap.L().With(append(fields, zap.Error(err))...).Error("[Queue] Failed to publish notification")
		return
	}

	zap.L().With(fields...).Info("[Queue] Notification published")
}
