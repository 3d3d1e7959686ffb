// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package felt provides the element type of the STARK prime field,
// which is the unit of keys and values of the whole state layer.
package felt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/ethereum/go-ethereum/rlp"
)

// Bytes is the byte length of a serialized field element.
const Bytes = fp.Bytes

// Felt is an element of the STARK prime field.
// The zero value is ready to use and represents the field's zero.
// Felt is comparable, so it can be used as a map key directly.
type Felt struct {
	val fp.Element
}

// Zero is the zero element.
var Zero = Felt{}

var (
	_ json.Marshaler   = (*Felt)(nil)
	_ json.Unmarshaler = (*Felt)(nil)
	_ rlp.Encoder      = (*Felt)(nil)
	_ rlp.Decoder      = (*Felt)(nil)
)

// New creates a felt from the given raw element.
func New(v *fp.Element) Felt {
	return Felt{val: *v}
}

// SetBytes interprets b as a big-endian integer and reduces it into the field.
func (f *Felt) SetBytes(b []byte) *Felt {
	f.val.SetBytes(b)
	return f
}

// SetBytesCanonical sets f from exactly 32 big-endian bytes.
// An error is returned if the value is not a canonical field element.
func (f *Felt) SetBytesCanonical(b []byte) error {
	return f.val.SetBytesCanonical(b)
}

// SetUint64 sets f to the given small integer.
func (f *Felt) SetUint64(v uint64) *Felt {
	f.val.SetUint64(v)
	return f
}

// Add sets f to a+b in the field and returns f.
func (f *Felt) Add(a, b Felt) *Felt {
	f.val.Add(&a.val, &b.val)
	return f
}

// Impl exposes the underlying field element.
func (f *Felt) Impl() *fp.Element {
	return &f.val
}

// Bytes returns the 32-byte big-endian form of f.
func (f Felt) Bytes() [Bytes]byte {
	return f.val.Bytes()
}

// Marshal returns the 32-byte big-endian form of f as a slice.
func (f Felt) Marshal() []byte {
	b := f.val.Bytes()
	return b[:]
}

// TrimmedBytes returns the big-endian form of f with leading zeros removed.
// The zero element yields an empty slice.
func (f Felt) TrimmedBytes() []byte {
	b := f.val.Bytes()
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// IsZero reports whether f is the zero element.
func (f Felt) IsZero() bool {
	return f.val.IsZero()
}

// Equal reports whether f and x represent the same element.
func (f Felt) Equal(x Felt) bool {
	return f == x
}

// Cmp compares f and x, returning -1, 0 or 1.
func (f Felt) Cmp(x Felt) int {
	return f.val.Cmp(&x.val)
}

// BigInt writes the integer value of f into v and returns v.
func (f Felt) BigInt(v *big.Int) *big.Int {
	return f.val.BigInt(v)
}

// String implements stringer. It renders f as minimal hex with 0x prefix.
func (f Felt) String() string {
	return fmt.Sprintf("%#x", f.BigInt(new(big.Int)))
}

// AbbrevString returns the abbreviated string presentation, for logging.
func (f Felt) AbbrevString() string {
	s := f.String()
	if len(s) > 12 {
		return s[:7] + "…" + s[len(s)-4:]
	}
	return s
}

// Parse converts a hex string, with or without 0x prefix, into a felt.
// The value must fit the field.
func Parse(s string) (Felt, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Felt{}, errors.New("invalid hex string")
	}
	if v.Cmp(fp.Modulus()) >= 0 {
		return Felt{}, errors.New("value out of field range")
	}
	var f Felt
	f.val.SetBigInt(v)
	return f, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Felt {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FromBytes creates a felt by reducing b into the field.
func FromBytes(b []byte) Felt {
	var f Felt
	f.SetBytes(b)
	return f
}

// FromUint64 creates a felt from a small integer.
func FromUint64(v uint64) Felt {
	var f Felt
	f.SetUint64(v)
	return f
}

// MarshalJSON implements json.Marshaler.
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder. Felts are encoded as trimmed
// big-endian byte strings to keep persisted records compact.
func (f Felt) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, f.TrimmedBytes())
}

// DecodeRLP implements rlp.Decoder.
func (f *Felt) DecodeRLP(s *rlp.Stream) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	if len(b) > Bytes {
		return errors.New("rlp: felt byte string too long")
	}
	if len(b) == Bytes {
		return f.SetBytesCanonical(b)
	}
	f.SetBytes(b)
	return nil
}
