package event

type Type string

// Payloads: ListingCreatedEvent, ItemNotAvailableEvent and ItemGoneEvent
// carry the entity.Listing; OrderPlacedEvent, ItemSoldEvent and
// OrderCancelledEvent carry the entity.Order.
const (
	ListingCreatedEvent   Type = "ListingCreatedEvent"
	OrderPlacedEvent      Type = "OrderPlacedEvent"
	ItemSoldEvent         Type = "ItemSoldEvent"
	ItemNotAvailableEvent Type = "ItemNotAvailableEvent"
	ItemGoneEvent         Type = "ItemGoneEvent"
	OrderCancelledEvent   Type = "OrderCancelledEvent"
)
