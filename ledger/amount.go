package ledger

import (
	"math"

	"github.com/lunfardo314/scroogeutxo"
)

// Amount is a fixed-point value in the smallest units.
// It is signed, so a negative declared output value is representable and can be rejected by validation
type Amount int64

func (a Amount) Bytes() []byte {
	return scroogeutxo.EncodeInteger(int64(a))
}

func AmountFromBytes(data []byte) (Amount, error) {
	ret, err := scroogeutxo.DecodeIntegerExact[int64](data)
	return Amount(ret), err
}

// AddAmounts returns false on int64 overflow
func AddAmounts(a, b Amount) (Amount, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, false
	}
	return a + b, true
}
