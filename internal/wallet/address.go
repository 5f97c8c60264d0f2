package wallet

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsAddress reports whether s is a well-formed account address. All-lower and
// all-upper hex are accepted as is; mixed case must carry a valid EIP-55 checksum.
func IsAddress(s string) bool {
	if !common.IsHexAddress(s) {
		return false
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hex == strings.ToLower(hex) || hex == strings.ToUpper(hex) {
		return true
	}
	return common.HexToAddress(s).Hex()[2:] == hex
}

// ShortAddress renders 0x1234...abcd for status lines.
func ShortAddress(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
