package custody

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
)

const maxTokenIDBits = 256

// TokenID identifies a token within the custody contract. It keeps the encoding the
// caller used so that responses can echo the identifier back as it was given.
type TokenID struct {
	value *big.Int
	raw   json.RawMessage
}

// NewTokenID wraps v, which must be non-negative.
func NewTokenID(v *big.Int) TokenID {
	return TokenID{value: new(big.Int).Set(v)}
}

// ParseTokenID parses a decimal or 0x-prefixed hex token identifier.
func ParseTokenID(s string) (TokenID, error) {
	v, err := parseTokenValue(s)
	if err != nil {
		return TokenID{}, err
	}

	return TokenID{value: v}, nil
}

// ParseTokenIDJSON accepts a JSON number or a JSON string holding a token identifier.
// An absent or null value yields ErrMissingTokenID.
func ParseTokenIDJSON(raw json.RawMessage) (TokenID, error) {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return TokenID{}, ErrMissingTokenID
	}

	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return TokenID{}, ErrInvalidTokenID
		}
	} else {
		// numbers only: no fractions, exponents or signs
		s = string(b)
		if strings.ContainsAny(s, ".eE+-") {
			return TokenID{}, ErrInvalidTokenID
		}
	}

	v, err := parseTokenValue(s)
	if err != nil {
		return TokenID{}, err
	}

	return TokenID{value: v, raw: append(json.RawMessage{}, b...)}, nil
}

func parseTokenValue(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrMissingTokenID
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
		if s == "" {
			return nil, ErrInvalidTokenID
		}
	}

	// SetString would accept a leading sign and underscores, reject them here
	if strings.ContainsAny(s, "+-_") {
		return nil, ErrInvalidTokenID
	}

	v, ok := new(big.Int).SetString(s, base)
	if !ok || v.Sign() < 0 || v.BitLen() > maxTokenIDBits {
		return nil, ErrInvalidTokenID
	}

	return v, nil
}

// IsZero reports whether the token id was never set.
func (t TokenID) IsZero() bool {
	return t.value == nil
}

// Big returns a copy of the numeric value.
func (t TokenID) Big() *big.Int {
	if t.value == nil {
		return nil
	}

	return new(big.Int).Set(t.value)
}

// String returns the decimal form.
func (t TokenID) String() string {
	if t.value == nil {
		return ""
	}

	return t.value.String()
}

// Equal compares numeric values, ignoring the original encoding.
func (t TokenID) Equal(o TokenID) bool {
	if t.value == nil || o.value == nil {
		return t.value == o.value
	}

	return t.value.Cmp(o.value) == 0
}

func (t TokenID) MarshalJSON() ([]byte, error) {
	if len(t.raw) > 0 {
		return t.raw, nil
	}

	if t.value == nil {
		return []byte("null"), nil
	}

	return []byte(t.value.String()), nil
}

func (t *TokenID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = TokenID{}
		return nil
	}

	v, err := ParseTokenIDJSON(b)
	if err != nil {
		return err
	}

	*t = v
	return nil
}
