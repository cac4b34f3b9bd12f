package marketplace

import (
	"errors"
	"fmt"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidRegistry = errors.New("invalid item registry")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrSameParty       = errors.New("buyer and seller are the same party")

	ErrNotAuthorized = errors.New("not authorized")
	ErrNotAdmin      = errors.New("not admin")
	ErrUnauthorized  = errors.New("unauthorized caller")

	ErrInvalidListing   = errors.New("invalid listing")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrOwnershipChanged = errors.New("item ownership changed")
	ErrItemNotFound     = errors.New("item does not exist")
	ErrItemGone         = errors.New("item no longer exists")

	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	ErrInvalidFee      = errors.New("invalid fee")
	ErrFeeExceedsPrice = errors.New("platform fee exceeds sale price")
)

// Kind returns the taxonomy name the API reports for an error. External
// failures keep their classification so callers can tell an explicit revert
// from a silent one.
func Kind(err error) string {
	var ext rpc.ExternalError
	if errors.As(err, &ext) {
		return fmt.Sprintf("ExternalFailure.%s", ext.Kind)
	}

	for sentinel, kind := range kinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return "Internal"
}

var kinds = map[error]string{
	ErrInvalidAddress:        "InvalidAddress",
	ErrInvalidRegistry:       "InvalidRegistry",
	ErrInvalidPrice:          "InvalidPrice",
	ErrSameParty:             "SameParty",
	ErrNotAuthorized:         "NotAuthorized",
	ErrNotAdmin:              "NotAdmin",
	ErrUnauthorized:          "Unauthorized",
	ErrInvalidListing:        "InvalidListing",
	ErrInvalidOrder:          "InvalidOrder",
	ErrOwnershipChanged:      "OwnershipChanged",
	ErrItemNotFound:          "ItemNotFound",
	ErrItemGone:              "ItemNoLongerExists",
	ErrInsufficientBalance:   "InsufficientBalance",
	ErrInsufficientAllowance: "InsufficientAllowance",
	ErrInvalidFee:            "InvalidFee",
	ErrFeeExceedsPrice:       "FeeExceedsPrice",
}
