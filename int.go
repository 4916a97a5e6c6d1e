package scroogeutxo

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// all integers on the wire are big-endian
var byteOrder = binary.BigEndian

type integerIntern interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | uint64 | int64
}

func EncodeInteger[T integerIntern](v T) []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, byteOrder, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// DecodeInteger panics if data is shorter than the size of T
func DecodeInteger[T integerIntern](data []byte) T {
	var ret T
	if err := binary.Read(bytes.NewReader(data), byteOrder, &ret); err != nil {
		panic(err)
	}
	return ret
}

// DecodeIntegerExact is DecodeInteger which requires the exact length of the data
func DecodeIntegerExact[T integerIntern](data []byte) (T, error) {
	var ret T
	if len(data) != binary.Size(ret) {
		return ret, fmt.Errorf("DecodeIntegerExact: expected %d bytes, got %d", binary.Size(ret), len(data))
	}
	return DecodeInteger[T](data), nil
}
