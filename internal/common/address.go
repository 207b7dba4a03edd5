package common

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var hexAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func IsSameHexAddress(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

func ChecksumAddress(addr string) string {
	address := common.HexToAddress(addr)

	return address.Hex()
}

// IsValidAddress accepts 0x followed by 40 hex characters in any case. The EIP-55
// checksum is not enforced.
func IsValidAddress(addr string) bool {
	return hexAddressRegex.MatchString(addr)
}
