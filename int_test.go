package scroogeutxo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func testOne[T integerIntern](t *testing.T, v T) {
	b := EncodeInteger(v)
	require.EqualValues(t, binary.Size(v), len(b))
	require.True(t, v == DecodeInteger[T](b))

	vBack, err := DecodeIntegerExact[T](b)
	require.NoError(t, err)
	require.True(t, v == vBack)
}

func TestEncodeDecode(t *testing.T) {
	testOne(t, uint8(1))
	testOne(t, uint16(2))
	testOne(t, uint32(3))
	testOne(t, uint64(4))
	testOne(t, int8(-5))
	testOne(t, int16(-6))
	testOne(t, int32(-7))
	testOne(t, int64(-8))
}

func TestBigEndian(t *testing.T) {
	require.EqualValues(t, []byte{0x01, 0x02}, EncodeInteger(uint16(0x0102)))
	require.EqualValues(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, EncodeInteger(int64(-1)))
}

func TestDecodeExact(t *testing.T) {
	v, err := DecodeIntegerExact[int64](EncodeInteger(int64(1337)))
	require.NoError(t, err)
	require.EqualValues(t, 1337, v)

	_, err = DecodeIntegerExact[int64]([]byte{1, 2, 3})
	require.Error(t, err)
	require.Panics(t, func() {
		DecodeInteger[uint32]([]byte{1})
	})
}
