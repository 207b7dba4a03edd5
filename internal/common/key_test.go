package common

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestIsValidKeyFormat(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 32)

	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"lowercase", valid, true},
		{"uppercase", "0x" + strings.Repeat("AB", 32), true},
		{"mixed", "0x" + strings.Repeat("aB", 32), true},
		{"empty", "", false},
		{"missing prefix", strings.Repeat("ab", 32), false},
		{"too short", valid[:65], false},
		{"too long", valid + "a", false},
		{"contains g", "0x" + strings.Repeat("g", 64), false},
		{"contains dash", "0x" + strings.Repeat("a", 63) + "-", false},
		{"contains space", "0x" + strings.Repeat("a", 63) + " ", false},
		{"upper prefix", "0X" + strings.Repeat("ab", 32), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if actual := IsValidKeyFormat(tt.key); actual != tt.expected {
				t.Errorf("IsValidKeyFormat(%q) = %v, want %v", tt.key, actual, tt.expected)
			}
		})
	}
}

func TestHexToPrivateKey(t *testing.T) {
	k, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	h := PrivateKeyToHex(k)
	if !IsValidKeyFormat(h) {
		t.Fatalf("PrivateKeyToHex produced %d chars, want 66", len(h))
	}

	parsed, err := HexToPrivateKey(h)
	if err != nil {
		t.Fatal(err)
	}

	if crypto.PubkeyToAddress(parsed.PublicKey) != crypto.PubkeyToAddress(k.PublicKey) {
		t.Errorf("HexToPrivateKey(PrivateKeyToHex(k)) derived a different address")
	}
}
