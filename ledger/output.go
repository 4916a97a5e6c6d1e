package ledger

import (
	"fmt"

	"github.com/lunfardo314/scroogeutxo/lazyslice"
)

const (
	outputBlockOwner = iota
	outputBlockAmount
	outputNumBlocks
)

// Output is claimable value. Serialized as lazyslice array [owner, amount]
type Output struct {
	Owner  Address
	Amount Amount
}

type OutputWithID struct {
	ID     OutputID
	Output Output
}

func NewOutput(owner Address, amount Amount) Output {
	return Output{Owner: owner, Amount: amount}
}

func OutputFromBytes(data []byte) (ret Output, err error) {
	arr, err := lazyslice.ParseArray(data, outputNumBlocks)
	if err != nil {
		return
	}
	if arr.NumElements() != outputNumBlocks {
		err = fmt.Errorf("OutputFromBytes: %d elements expected, got %d", outputNumBlocks, arr.NumElements())
		return
	}
	if ret.Owner, err = AddressFromBytes(arr.At(outputBlockOwner)); err != nil {
		return
	}
	ret.Amount, err = AmountFromBytes(arr.At(outputBlockAmount))
	return
}

func (o Output) Bytes() []byte {
	return lazyslice.MakeArray(o.Owner.Bytes(), o.Amount.Bytes()).Bytes()
}

func (o Output) String() string {
	return fmt.Sprintf("%d -> %s", o.Amount, o.Owner.Short())
}
