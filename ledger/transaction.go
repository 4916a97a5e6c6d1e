package ledger

import (
	"fmt"

	"github.com/lunfardo314/scroogeutxo/lazyslice"
	"golang.org/x/crypto/blake2b"
)

// Transaction is an immutable, parsed transaction. The ID is the blake2b-256 hash of the
// serialized bytes and is computed once, when the value is created.
// Serialized form is lazyslice array:
// [0] inputs: array of [outputID, signature]
// [1] outputs: array of serialized outputs
type Transaction struct {
	inputs  []Input
	outputs []Output
	bytes   []byte
	id      TransactionID
}

// Input claims an output from the pool. Index is the position of the input in the transaction
type Input struct {
	Ref       OutputID
	Signature []byte
	Index     int
}

const (
	txBlockInputs = iota
	txBlockOutputs
	txNumBlocks
)

const (
	inputBlockRef = iota
	inputBlockSignature
	inputNumBlocks
)

// TransactionFromBytes parses a private copy of txBytes, the caller may reuse the buffer
func TransactionFromBytes(txBytes []byte) (*Transaction, error) {
	txBytes = append([]byte(nil), txBytes...)
	arr, err := lazyslice.ParseArray(txBytes, txNumBlocks)
	if err != nil {
		return nil, fmt.Errorf("TransactionFromBytes: %v", err)
	}
	if arr.NumElements() != txNumBlocks {
		return nil, fmt.Errorf("TransactionFromBytes: %d elements expected, got %d", txNumBlocks, arr.NumElements())
	}
	inputsArr, err := lazyslice.ParseArray(arr.At(txBlockInputs), MaxNumInputs)
	if err != nil {
		return nil, fmt.Errorf("TransactionFromBytes: inputs: %v", err)
	}
	outputsArr, err := lazyslice.ParseArray(arr.At(txBlockOutputs), MaxNumOutputs)
	if err != nil {
		return nil, fmt.Errorf("TransactionFromBytes: outputs: %v", err)
	}
	ret := &Transaction{
		inputs:  make([]Input, inputsArr.NumElements()),
		outputs: make([]Output, outputsArr.NumElements()),
		bytes:   txBytes,
		id:      blake2b.Sum256(txBytes),
	}
	inputsArr.ForEach(func(i int, data []byte) bool {
		ret.inputs[i], err = inputFromBytes(data, i)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	outputsArr.ForEach(func(i int, data []byte) bool {
		ret.outputs[i], err = OutputFromBytes(data)
		if err != nil {
			err = fmt.Errorf("TransactionFromBytes: output #%d: %v", i, err)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func inputFromBytes(data []byte, idx int) (ret Input, err error) {
	arr, err := lazyslice.ParseArray(data, inputNumBlocks)
	if err != nil {
		err = fmt.Errorf("input #%d: %v", idx, err)
		return
	}
	if arr.NumElements() != inputNumBlocks {
		err = fmt.Errorf("input #%d: %d elements expected", idx, inputNumBlocks)
		return
	}
	if ret.Ref, err = OutputIDFromBytes(arr.At(inputBlockRef)); err != nil {
		err = fmt.Errorf("input #%d: %v", idx, err)
		return
	}
	ret.Signature = arr.At(inputBlockSignature)
	ret.Index = idx
	return
}

func (in *Input) bytes() []byte {
	return lazyslice.MakeArray(in.Ref[:], in.Signature).Bytes()
}

func (tx *Transaction) ID() TransactionID {
	return tx.id
}

// Bytes returns the serialized transaction. It must not be modified
func (tx *Transaction) Bytes() []byte {
	return tx.bytes
}

func (tx *Transaction) NumInputs() int {
	return len(tx.inputs)
}

func (tx *Transaction) NumOutputs() int {
	return len(tx.outputs)
}

func (tx *Transaction) Input(idx int) Input {
	return tx.inputs[idx]
}

func (tx *Transaction) Output(idx int) Output {
	return tx.outputs[idx]
}

func (tx *Transaction) ForEachInput(fun func(idx int, in *Input) bool) {
	for i := range tx.inputs {
		in := tx.inputs[i]
		if !fun(i, &in) {
			return
		}
	}
}

func (tx *Transaction) ForEachOutput(fun func(idx byte, out Output) bool) {
	for i, o := range tx.outputs {
		if !fun(byte(i), o) {
			return
		}
	}
}

// ProducedOutputs returns outputs of the transaction with their future pool keys
func (tx *Transaction) ProducedOutputs() []OutputWithID {
	ret := make([]OutputWithID, len(tx.outputs))
	for i, o := range tx.outputs {
		ret[i] = OutputWithID{ID: NewOutputID(tx.id, byte(i)), Output: o}
	}
	return ret
}

// SigningBytes is the message signed by the owner of the output consumed by the input idx:
// the referenced outputID of that input and all outputs
func (tx *Transaction) SigningBytes(idx int) []byte {
	return signingBytes(tx.inputs[idx].Ref, tx.outputs)
}

func signingBytes(ref OutputID, outputs []Output) []byte {
	return lazyslice.MakeArray(ref[:], encodeOutputs(outputs)).Bytes()
}

func encodeOutputs(outputs []Output) []byte {
	arr := lazyslice.EmptyArray(MaxNumOutputs)
	for _, o := range outputs {
		arr.Push(o.Bytes())
	}
	return arr.Bytes()
}

func encodeTransaction(inputs []Input, outputs []Output) []byte {
	arr := lazyslice.EmptyArray(MaxNumInputs)
	for i := range inputs {
		arr.Push(inputs[i].bytes())
	}
	return lazyslice.MakeArray(arr.Bytes(), encodeOutputs(outputs)).Bytes()
}

func (tx *Transaction) String() string {
	return fmt.Sprintf("tx %s: %d inputs, %d outputs", tx.id.Short(), len(tx.inputs), len(tx.outputs))
}
