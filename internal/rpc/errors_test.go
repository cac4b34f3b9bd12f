package rpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("maps the shared error codes", func(t *testing.T) {
		assert.Equal(t, FailureReverted, Classify(&RPCError{Code: CodeReverted}))
		assert.Equal(t, FailureArithmetic, Classify(&RPCError{Code: CodeArithmetic}))
		assert.Equal(t, FailureNotFound, Classify(&RPCError{Code: CodeNotFound}))
	})

	t.Run("treats unknown codes as opaque", func(t *testing.T) {
		assert.Equal(t, FailureOpaque, Classify(&RPCError{Code: -1}))
	})

	t.Run("treats transport errors as opaque", func(t *testing.T) {
		assert.Equal(t, FailureOpaque, Classify(errors.New("connection refused")))
	})

	t.Run("sees through wrapping", func(t *testing.T) {
		err := fmt.Errorf("call failed: %w", &RPCError{Code: CodeNotFound})
		assert.Equal(t, FailureNotFound, Classify(err))
	})
}

func TestReason(t *testing.T) {
	assert.Equal(t, "insufficient funds", Reason(&RPCError{Code: CodeReverted, Message: "insufficient funds"}))

	assert.Equal(t, "", Reason(&RPCError{Code: CodeNotFound, Message: "unknown token"}))
	assert.Equal(t, "", Reason(errors.New("connection refused")))
}

func TestIsNotFound(t *testing.T) {
	notFound := NewExternalError("registry", "OwnerOf", &RPCError{Code: CodeNotFound, Message: "unknown token"})
	assert.True(t, IsNotFound(notFound))

	reverted := NewExternalError("ledger", "TransferFrom", &RPCError{Code: CodeReverted})
	assert.False(t, IsNotFound(reverted))

	assert.False(t, IsNotFound(errors.New("connection refused")))
}

func TestExternalError(t *testing.T) {
	t.Run("carries the failing system and operation", func(t *testing.T) {
		err := NewExternalError("ledger", "TransferFrom", &RPCError{Code: CodeReverted, Message: "insufficient funds"})

		assert.Equal(t, "ledger", err.System)
		assert.Equal(t, "TransferFrom", err.Op)
		assert.Equal(t, FailureReverted, err.Kind)
		assert.Equal(t, "insufficient funds", err.Reason)
		assert.Equal(t, "ledger TransferFrom failed (reverted): insufficient funds", err.Error())
	})

	t.Run("omits the reason when there is none", func(t *testing.T) {
		err := NewExternalError("registry", "OwnerOf", &RPCError{Code: CodeNotFound, Message: "unknown token"})

		assert.Equal(t, "registry OwnerOf failed (not-found)", err.Error())
	})

	t.Run("unwraps to the underlying cause", func(t *testing.T) {
		cause := &RPCError{Code: CodeArithmetic, Message: "overflow"}
		err := NewExternalError("ledger", "TransferWithCallback", cause)

		var rpcErr *RPCError
		assert.ErrorAs(t, err, &rpcErr)
		assert.Equal(t, CodeArithmetic, rpcErr.Code)
	})

	t.Run("survives another layer of wrapping", func(t *testing.T) {
		err := fmt.Errorf("buy failed: %w", NewExternalError("ledger", "TransferFrom", &RPCError{Code: CodeReverted}))

		var extErr ExternalError
		assert.ErrorAs(t, err, &extErr)
		assert.Equal(t, FailureReverted, extErr.Kind)
	})
}
