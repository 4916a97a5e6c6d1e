package lazyslice

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/lunfardo314/scroogeutxo"
)

// Array can be interpreted two ways:
// - as byte slice
// - as serialized append-only array of byte slices
// It is parsed only when accessed as an array and serialized only when bytes are needed.
// The serialized form starts with a 2-byte big-endian prefix: the highest 2 bits encode the
// width of the element length field (0, 1, 2 or 4 bytes), the remaining 14 bits are the number of elements.
type Array struct {
	bytes          []byte
	parsed         [][]byte
	maxNumElements int
}

type lenPrefixType uint16

const (
	DataLenBytes0  = uint16(0x00) << 14
	DataLenBytes8  = uint16(0x01) << 14
	DataLenBytes16 = uint16(0x02) << 14
	DataLenBytes32 = uint16(0x03) << 14

	DataLenMask  = uint16(0x03) << 14
	ArrayLenMask = ^DataLenMask
	MaxArrayLen  = int(ArrayLenMask) // 16383

	emptyArrayPrefix = lenPrefixType(0)
)

func (dl lenPrefixType) dataLenBytes() int {
	switch uint16(dl) & DataLenMask {
	case DataLenBytes0:
		return 0
	case DataLenBytes8:
		return 1
	case DataLenBytes16:
		return 2
	default:
		return 4
	}
}

func (dl lenPrefixType) numElements() int {
	return int(uint16(dl) & ArrayLenMask)
}

func ArrayFromBytes(data []byte, maxNumElements ...int) *Array {
	mx := MaxArrayLen
	if len(maxNumElements) > 0 {
		mx = maxNumElements[0]
	}
	return &Array{
		bytes:          data,
		maxNumElements: mx,
	}
}

// ParseArray parses data eagerly and returns an error instead of panicking on malformed input
func ParseArray(data []byte, maxNumElements int) (*Array, error) {
	parsed, err := parseArray(data, maxNumElements)
	if err != nil {
		return nil, err
	}
	return &Array{
		bytes:          data,
		parsed:         parsed,
		maxNumElements: maxNumElements,
	}, nil
}

func EmptyArray(maxNumElements ...int) *Array {
	return ArrayFromBytes(scroogeutxo.EncodeInteger(uint16(emptyArrayPrefix)), maxNumElements...)
}

// MakeArray creates an array from the elements
func MakeArray(elems ...[]byte) *Array {
	ret := EmptyArray()
	for _, e := range elems {
		ret.Push(e)
	}
	return ret
}

func (a *Array) Push(data []byte) int {
	a.ensureParsed()
	if len(a.parsed) >= a.maxNumElements {
		panic("Array.Push: too many elements")
	}
	a.parsed = append(a.parsed, data)
	a.bytes = nil
	return len(a.parsed) - 1
}

func (a *Array) ForEach(fun func(i int, data []byte) bool) {
	for i := 0; i < a.NumElements(); i++ {
		if !fun(i, a.At(i)) {
			break
		}
	}
}

func (a *Array) At(idx int) []byte {
	a.ensureParsed()
	return a.parsed[idx]
}

func (a *Array) NumElements() int {
	a.ensureParsed()
	return len(a.parsed)
}

func (a *Array) Bytes() []byte {
	if a.bytes == nil {
		var buf bytes.Buffer
		if err := encodeArray(a.parsed, &buf); err != nil {
			panic(err)
		}
		a.bytes = buf.Bytes()
	}
	return a.bytes
}

func (a *Array) ensureParsed() {
	if a.parsed != nil {
		return
	}
	var err error
	if a.parsed, err = parseArray(a.bytes, a.maxNumElements); err != nil {
		panic(err)
	}
}

func calcLenPrefix(data [][]byte) (lenPrefixType, error) {
	if len(data) > MaxArrayLen {
		return 0, errors.New("too many elements")
	}
	var dl uint16
	for _, d := range data {
		t := DataLenBytes0
		switch {
		case len(d) > math.MaxUint32:
			return 0, errors.New("element can't be longer than MaxUint32")
		case len(d) > math.MaxUint16:
			t = DataLenBytes32
		case len(d) > math.MaxUint8:
			t = DataLenBytes16
		case len(d) > 0:
			t = DataLenBytes8
		}
		if dl < t {
			dl = t
		}
	}
	return lenPrefixType(dl | uint16(len(data))), nil
}

func encodeArray(data [][]byte, buf *bytes.Buffer) error {
	prefix, err := calcLenPrefix(data)
	if err != nil {
		return err
	}
	buf.Write(scroogeutxo.EncodeInteger(uint16(prefix)))
	numDataLenBytes := prefix.dataLenBytes()
	if numDataLenBytes == 0 {
		return nil
	}
	for _, d := range data {
		switch numDataLenBytes {
		case 1:
			buf.WriteByte(byte(len(d)))
		case 2:
			buf.Write(scroogeutxo.EncodeInteger(uint16(len(d))))
		case 4:
			buf.Write(scroogeutxo.EncodeInteger(uint32(len(d))))
		}
		buf.Write(d)
	}
	return nil
}

// parseArray splits data into elements without copying, the elements share the underlying array
func parseArray(data []byte, maxNumElements int) ([][]byte, error) {
	if len(data) < 2 {
		return nil, errors.New("parseArray: unexpected EOF")
	}
	prefix := lenPrefixType(scroogeutxo.DecodeInteger[uint16](data[:2]))
	n := prefix.numElements()
	if n > maxNumElements {
		return nil, fmt.Errorf("parseArray: number of elements %d exceeds maximum %d", n, maxNumElements)
	}
	numDataLenBytes := prefix.dataLenBytes()
	buf := data[2:]
	ret := make([][]byte, n)
	for i := range ret {
		if len(buf) < numDataLenBytes {
			return nil, fmt.Errorf("parseArray: unexpected EOF at element #%d", i)
		}
		var sz int
		switch numDataLenBytes {
		case 1:
			sz = int(buf[0])
		case 2:
			sz = int(scroogeutxo.DecodeInteger[uint16](buf[:2]))
		case 4:
			sz = int(scroogeutxo.DecodeInteger[uint32](buf[:4]))
		}
		buf = buf[numDataLenBytes:]
		if len(buf) < sz {
			return nil, fmt.Errorf("parseArray: unexpected EOF in element #%d", i)
		}
		ret[i] = buf[:sz:sz]
		buf = buf[sz:]
	}
	if len(buf) != 0 {
		return nil, errors.New("parseArray: not all bytes were consumed")
	}
	return ret, nil
}
