package repository

import (
	"errors"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/patrickmn/go-cache"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository holds every order ever placed. Orders are finalized, never
// deleted, so settled trades stay queryable.
type OrderRepository interface {
	Save(order entity.Order)
	GetByOrderId(orderId uint64) (entity.Order, error)
	Count() int
}

type orderRepository struct {
	orders *cache.Cache
}

func NewOrderRepository() OrderRepository {
	return orderRepository{orders: cache.New(cache.NoExpiration, cache.NoExpiration)}
}

func (r orderRepository) Save(order entity.Order) {
	r.orders.Set(order.Slug(), order, cache.NoExpiration)
}

func (r orderRepository) GetByOrderId(orderId uint64) (entity.Order, error) {
	stored, exists := r.orders.Get(entity.CreateOrderSlug(orderId))
	if !exists {
		return entity.Order{}, ErrOrderNotFound
	}

	return stored.(entity.Order), nil
}

func (r orderRepository) Count() int {
	return r.orders.ItemCount()
}
