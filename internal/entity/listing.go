package entity

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// Listing is an item offered for sale. Owner is the registry owner captured
// when the listing was created; it is never refreshed in place. A listing
// whose snapshot no longer matches the registry is removed, not updated.
type Listing struct {
	ListingId   uint64 `json:"listingId"`
	Contract    string `json:"contract"`
	TokenId     uint64 `json:"tokenId"`
	Price       string `json:"price"`
	Owner       string `json:"owner"`
	OwnerBech32 string `json:"ownerBech32"`
	MetadataUri string `json:"metadataUri"`

	CreatedAt time.Time `json:"createdAt"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.ListingId)
}

func CreateListingSlug(listingId uint64) string {
	return slug.Make(fmt.Sprintf("listing-%d", listingId))
}
