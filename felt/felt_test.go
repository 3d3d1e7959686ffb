// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package felt

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	f, err := Parse("0x7a3")
	assert.Nil(t, err)
	assert.Equal(t, FromUint64(0x7a3), f)

	f, err = Parse("07a3")
	assert.Nil(t, err)
	assert.Equal(t, FromUint64(0x7a3), f)

	_, err = Parse("0xzz")
	assert.Error(t, err)

	// the field modulus is not a valid element
	_, err = Parse("0x800000000000011000000000000000000000000000000000000000000000001")
	assert.Error(t, err)
}

func TestBytesRoundTrip(t *testing.T) {
	f := MustParse("0xdeadbeefcafe")
	b := f.Bytes()

	var g Felt
	assert.Nil(t, g.SetBytesCanonical(b[:]))
	assert.True(t, f.Equal(g))

	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0xca, 0xfe}, f.TrimmedBytes())
	assert.Len(t, Zero.TrimmedBytes(), 0)
}

func TestZero(t *testing.T) {
	var f Felt
	assert.True(t, f.IsZero())
	assert.True(t, f.Equal(Zero))
	assert.False(t, FromUint64(1).IsZero())
}

func TestString(t *testing.T) {
	assert.Equal(t, "0x7a3", MustParse("0x7a3").String())
	assert.Equal(t, "0x0", Zero.String())
}

func TestRLP(t *testing.T) {
	f := MustParse("0x123456789abcdef")
	data, err := rlp.EncodeToBytes(&f)
	assert.Nil(t, err)

	var g Felt
	assert.Nil(t, rlp.DecodeBytes(data, &g))
	assert.True(t, f.Equal(g))

	// zero encodes to an empty string
	data, err = rlp.EncodeToBytes(&Zero)
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x80}, data)

	var z Felt
	assert.Nil(t, rlp.DecodeBytes(data, &z))
	assert.True(t, z.IsZero())
}

func TestComparable(t *testing.T) {
	// felts are used as map keys across the state layer
	m := map[Felt]uint64{}
	m[FromUint64(7)] = 7
	m[MustParse("0x07")] = 8
	assert.Len(t, m, 1)
	assert.Equal(t, uint64(8), m[FromUint64(7)])
}
