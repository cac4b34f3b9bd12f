package addr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Zilliqa/gozilliqa-sdk/bech32"
	"go.uber.org/zap"
)

// Zero is the null address. It is never a valid participant or registry.
const Zero = "0x0000000000000000000000000000000000000000"

var hexAddress = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// Normalize lowercases a 0x hex address so lookups and comparisons are
// case-insensitive. Invalid input is returned untouched.
func Normalize(address string) string {
	if !hexAddress.MatchString(address) {
		return address
	}
	return strings.ToLower(address)
}

func IsValid(address string) bool {
	return hexAddress.MatchString(address)
}

func IsZero(address string) bool {
	return Normalize(address) == Zero
}

func Validate(address string) (string, error) {
	if !IsValid(address) {
		return "", fmt.Errorf("invalid address: %s", address)
	}
	return Normalize(address), nil
}

func GetBech32Address(address string) string {
	if address == "" {
		return ""
	}
	bech32Address, err := bech32.ToBech32Address(address)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("address", address)).Error("Failed to create bech32 address")
		return ""
	}
	return bech32Address
}
