package marketplace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	t.Run("names each sentinel", func(t *testing.T) {
		assert.Equal(t, "InvalidAddress", Kind(ErrInvalidAddress))
		assert.Equal(t, "InvalidRegistry", Kind(ErrInvalidRegistry))
		assert.Equal(t, "InvalidPrice", Kind(ErrInvalidPrice))
		assert.Equal(t, "SameParty", Kind(ErrSameParty))
		assert.Equal(t, "NotAuthorized", Kind(ErrNotAuthorized))
		assert.Equal(t, "NotAdmin", Kind(ErrNotAdmin))
		assert.Equal(t, "Unauthorized", Kind(ErrUnauthorized))
		assert.Equal(t, "InvalidListing", Kind(ErrInvalidListing))
		assert.Equal(t, "InvalidOrder", Kind(ErrInvalidOrder))
		assert.Equal(t, "OwnershipChanged", Kind(ErrOwnershipChanged))
		assert.Equal(t, "InsufficientBalance", Kind(ErrInsufficientBalance))
		assert.Equal(t, "InsufficientAllowance", Kind(ErrInsufficientAllowance))
		assert.Equal(t, "InvalidFee", Kind(ErrInvalidFee))
		assert.Equal(t, "FeeExceedsPrice", Kind(ErrFeeExceedsPrice))
	})

	t.Run("tells a missing item apart from a vanished one", func(t *testing.T) {
		assert.Equal(t, "ItemNotFound", Kind(ErrItemNotFound))
		assert.Equal(t, "ItemNoLongerExists", Kind(ErrItemGone))
	})

	t.Run("sees through wrapping", func(t *testing.T) {
		err := fmt.Errorf("%w: listing 42", ErrInvalidListing)
		assert.Equal(t, "InvalidListing", Kind(err))
	})

	t.Run("keeps the external failure classification", func(t *testing.T) {
		reverted := rpc.NewExternalError("ledger", "TransferFrom",
			&rpc.RPCError{Code: rpc.CodeReverted, Message: "insufficient funds"})
		assert.Equal(t, "ExternalFailure.reverted", Kind(reverted))

		arithmetic := rpc.NewExternalError("ledger", "TransferFrom",
			&rpc.RPCError{Code: rpc.CodeArithmetic, Message: "overflow"})
		assert.Equal(t, "ExternalFailure.arithmetic", Kind(arithmetic))

		notFound := rpc.NewExternalError("registry", "OwnerOf",
			&rpc.RPCError{Code: rpc.CodeNotFound, Message: "unknown token"})
		assert.Equal(t, "ExternalFailure.not-found", Kind(notFound))

		opaque := rpc.NewExternalError("registry", "OwnerOf", errors.New("connection refused"))
		assert.Equal(t, "ExternalFailure.opaque", Kind(opaque))
	})

	t.Run("falls back to internal", func(t *testing.T) {
		assert.Equal(t, "Internal", Kind(errors.New("broken pipe")))
	})
}
