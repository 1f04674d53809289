package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the size in bytes of a caller address.
const AddressLength = 20

// Address is the opaque identity handle of the caller that triggered an
// evaluation. The core never interprets it; it is stored and displayed through Hex.
type Address [AddressLength]byte

// ParseAddress decodes a hex address with or without the 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(raw) != AddressLength*2 {
		return a, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidAddress, AddressLength*2, len(raw))
	}
	if _, err := hex.Decode(a[:], []byte(raw)); err != nil {
		return a, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return a, nil
}

// Hex returns the 0x-prefixed lowercase hex form of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == Address{} }

// MarshalText encodes the address as 0x-prefixed hex so JSON projections carry
// the display form rather than a byte array.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

// UnmarshalText decodes the form produced by MarshalText.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
