package repository

import (
	"testing"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingRepository(t *testing.T) {
	listing := entity.Listing{
		ListingId: 1,
		Contract:  "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		TokenId:   42,
		Price:     "5000",
		Owner:     "0x1111111111111111111111111111111111111111",
	}

	t.Run("saves and fetches by listing id", func(t *testing.T) {
		repo := NewListingRepository()
		repo.Save(listing)

		stored, err := repo.GetByListingId(1)
		require.NoError(t, err)
		assert.Equal(t, listing, stored)
		assert.Equal(t, 1, repo.Count())
	})

	t.Run("misses with the not found sentinel", func(t *testing.T) {
		repo := NewListingRepository()

		_, err := repo.GetByListingId(99)
		assert.ErrorIs(t, err, ErrListingNotFound)
	})

	t.Run("replaces on save", func(t *testing.T) {
		repo := NewListingRepository()
		repo.Save(listing)

		updated := listing
		updated.Price = "6000"
		repo.Save(updated)

		stored, err := repo.GetByListingId(1)
		require.NoError(t, err)
		assert.Equal(t, "6000", stored.Price)
		assert.Equal(t, 1, repo.Count())
	})

	t.Run("deletes for good", func(t *testing.T) {
		repo := NewListingRepository()
		repo.Save(listing)

		repo.Delete(1)

		_, err := repo.GetByListingId(1)
		assert.ErrorIs(t, err, ErrListingNotFound)
		assert.Equal(t, 0, repo.Count())

		repo.Delete(1)
		assert.Equal(t, 0, repo.Count())
	})
}
