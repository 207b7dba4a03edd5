package common

import (
	"crypto/ecdsa"
	"regexp"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var adminKeyRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// IsValidKeyFormat reports whether k is 0x followed by exactly 64 hex characters.
func IsValidKeyFormat(k string) bool {
	return adminKeyRegex.MatchString(k)
}

// HexToPrivateKey parses a 0x prefixed raw private key.
func HexToPrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	privateKeyBytes, err := hexutil.Decode(privateKeyHex)
	if err != nil {
		return nil, err
	}

	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, err
	}

	return privateKey, nil
}

// PrivateKeyToHex is the inverse of HexToPrivateKey.
func PrivateKeyToHex(pk *ecdsa.PrivateKey) string {
	return hexutil.Encode(crypto.FromECDSA(pk))
}
