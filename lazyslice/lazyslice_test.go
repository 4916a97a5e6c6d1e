package lazyslice

import (
	"bytes"
	"math"
	"testing"

	"github.com/lunfardo314/scroogeutxo"
	"github.com/stretchr/testify/require"
)

const howMany = 250

var data [][]byte

func init() {
	data = make([][]byte, howMany)
	for i := range data {
		data[i] = scroogeutxo.EncodeInteger(uint16(i))
	}
}

func TestArraySemantics(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		ls := EmptyArray()
		require.EqualValues(t, []byte{0, 0}, ls.Bytes())
		require.EqualValues(t, 0, ls.NumElements())
	})
	t.Run("serialize all nil", func(t *testing.T) {
		ls := EmptyArray()
		ls.Push(nil)
		ls.Push(nil)
		ls.Push(nil)
		require.EqualValues(t, 3, ls.NumElements())
		lsBin := ls.Bytes()
		require.EqualValues(t, []byte{0, 3}, lsBin)
		lsBack := ArrayFromBytes(lsBin)
		require.EqualValues(t, 3, lsBack.NumElements())
		lsBack.ForEach(func(i int, d []byte) bool {
			require.EqualValues(t, 0, len(d))
			return true
		})
	})
	t.Run("serialize some nil", func(t *testing.T) {
		ls := MakeArray(nil, nil, data[17], nil, []byte("1234567890"))
		require.EqualValues(t, 5, ls.NumElements())
		lsBack := ArrayFromBytes(ls.Bytes())
		require.EqualValues(t, 5, lsBack.NumElements())
		require.EqualValues(t, 0, len(lsBack.At(0)))
		require.EqualValues(t, data[17], lsBack.At(2))
		require.EqualValues(t, []byte("1234567890"), lsBack.At(4))
	})
	t.Run("push after parse", func(t *testing.T) {
		ls := ArrayFromBytes(MakeArray(data[1], data[2]).Bytes())
		ls.Push(data[3])
		require.EqualValues(t, 3, ls.NumElements())
		lsBack := ArrayFromBytes(ls.Bytes())
		for i := 0; i < 3; i++ {
			require.EqualValues(t, data[i+1], lsBack.At(i))
		}
	})
	t.Run("max elements", func(t *testing.T) {
		ls := EmptyArray(2)
		ls.Push(data[0])
		ls.Push(data[1])
		require.Panics(t, func() {
			ls.Push(data[2])
		})
	})
	t.Run("many", func(t *testing.T) {
		ls := EmptyArray()
		for _, d := range data {
			ls.Push(d)
		}
		lsBack, err := ParseArray(ls.Bytes(), MaxArrayLen)
		require.NoError(t, err)
		require.EqualValues(t, howMany, lsBack.NumElements())
		lsBack.ForEach(func(i int, d []byte) bool {
			require.EqualValues(t, data[i], d)
			return true
		})
	})
}

func TestLongElements(t *testing.T) {
	t.Run("16 bit", func(t *testing.T) {
		long := bytes.Repeat([]byte{1}, math.MaxUint8+1)
		ls := MakeArray(data[0], long)
		require.EqualValues(t, DataLenBytes16|2, scroogeutxo.DecodeInteger[uint16](ls.Bytes()[:2]))
		lsBack := ArrayFromBytes(ls.Bytes())
		require.EqualValues(t, long, lsBack.At(1))
	})
	t.Run("32 bit", func(t *testing.T) {
		long := bytes.Repeat([]byte{2}, math.MaxUint16+1)
		ls := MakeArray(long)
		require.EqualValues(t, DataLenBytes32|1, scroogeutxo.DecodeInteger[uint16](ls.Bytes()[:2]))
		lsBack := ArrayFromBytes(ls.Bytes())
		require.EqualValues(t, long, lsBack.At(0))
	})
}

func TestParseErrors(t *testing.T) {
	_, err := ParseArray(nil, MaxArrayLen)
	require.Error(t, err)

	_, err = ParseArray([]byte{0x40, 2, 3, 1, 2, 3}, MaxArrayLen)
	require.Error(t, err)

	bin := MakeArray(data[1], data[2]).Bytes()
	_, err = ParseArray(append(bin, 0xff), MaxArrayLen)
	require.Error(t, err)

	_, err = ParseArray(bin, 1)
	require.Error(t, err)

	require.Panics(t, func() {
		ArrayFromBytes([]byte{0x40}).NumElements()
	})
}
