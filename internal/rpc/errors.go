package rpc

import (
	"errors"
	"fmt"
)

// FailureKind says how an external call failed: the remote system gave an
// explicit reason, hit an arithmetic fault, could not find the entity, or
// failed without explanation.
type FailureKind string

const (
	FailureReverted   FailureKind = "reverted"
	FailureArithmetic FailureKind = "arithmetic"
	FailureNotFound   FailureKind = "not-found"
	FailureOpaque     FailureKind = "opaque"
)

// Error codes shared by the ledger and registry RPC surfaces.
const (
	CodeReverted   RPCErrorCode = -7
	CodeArithmetic RPCErrorCode = -8
	CodeNotFound   RPCErrorCode = -9
)

// ExternalError wraps a failed ledger or registry call with enough context
// to report which system failed, doing what, and why.
type ExternalError struct {
	System string
	Op     string
	Kind   FailureKind
	Reason string
	Err    error
}

func (e ExternalError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s failed (%s): %s", e.System, e.Op, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s %s failed (%s)", e.System, e.Op, e.Kind)
}

func (e ExternalError) Unwrap() error {
	return e.Err
}

// NewExternalError classifies err and wraps it. Transport errors and
// unrecognised codes come out opaque.
func NewExternalError(system, op string, err error) ExternalError {
	return ExternalError{
		System: system,
		Op:     op,
		Kind:   Classify(err),
		Reason: Reason(err),
		Err:    err,
	}
}

func Classify(err error) FailureKind {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return FailureOpaque
	}

	switch rpcErr.Code {
	case CodeReverted:
		return FailureReverted
	case CodeArithmetic:
		return FailureArithmetic
	case CodeNotFound:
		return FailureNotFound
	}

	return FailureOpaque
}

// Reason returns the message carried by an explicit revert, or "".
func Reason(err error) string {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == CodeReverted {
		return rpcErr.Message
	}
	return ""
}

func IsNotFound(err error) bool {
	return Classify(err) == FailureNotFound
}
