package repository

import (
	"errors"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/patrickmn/go-cache"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

// ListingRepository holds the active listings. A listing exists from list()
// until it is sold or discovered stale; there is no soft-delete state.
type ListingRepository interface {
	Save(listing entity.Listing)
	GetByListingId(listingId uint64) (entity.Listing, error)
	Delete(listingId uint64)
	Count() int
}

type listingRepository struct {
	listings *cache.Cache
}

func NewListingRepository() ListingRepository {
	return listingRepository{listings: cache.New(cache.NoExpiration, cache.NoExpiration)}
}

func (r listingRepository) Save(listing entity.Listing) {
	r.listings.Set(listing.Slug(), listing, cache.NoExpiration)
}

func (r listingRepository) GetByListingId(listingId uint64) (entity.Listing, error) {
	stored, exists := r.listings.Get(entity.CreateListingSlug(listingId))
	if !exists {
		return entity.Listing{}, ErrListingNotFound
	}

	return stored.(entity.Listing), nil
}

func (r listingRepository) Delete(listingId uint64) {
	r.listings.Delete(entity.CreateListingSlug(listingId))
}

func (r listingRepository) Count() int {
	return r.listings.ItemCount()
}
