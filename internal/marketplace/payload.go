package marketplace

import (
	"encoding/binary"
	"fmt"
)

// The settlement payload is the order id as 8 big-endian bytes. It rides the
// fee transfer through the ledger and comes back on the completion callback,
// which is the only way the callback can be tied to its order.

func EncodeOrderPayload(orderId uint64) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, orderId)

	return payload
}

func DecodeOrderPayload(payload []byte) (uint64, error) {
	if len(payload) != 8 {
		return 0, fmt.Errorf("%w: settlement payload must be 8 bytes, got %d", ErrInvalidOrder, len(payload))
	}

	return binary.BigEndian.Uint64(payload), nil
}
