package ledger

import (
	"github.com/lunfardo314/easyfl"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
)

// TxBuilder assembles and signs a transaction. Outputs must be complete before signing,
// because every signature covers all outputs
type TxBuilder struct {
	inputs  []Input
	outputs []Output
}

func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		inputs:  make([]Input, 0),
		outputs: make([]Output, 0),
	}
}

func (b *TxBuilder) AddInput(ref OutputID) int {
	easyfl.Assert(len(b.inputs) < MaxNumInputs, "TxBuilder: too many inputs")
	b.inputs = append(b.inputs, Input{Ref: ref, Index: len(b.inputs)})
	return len(b.inputs) - 1
}

func (b *TxBuilder) AddOutput(out Output) int {
	easyfl.Assert(len(b.outputs) < MaxNumOutputs, "TxBuilder: too many outputs")
	b.outputs = append(b.outputs, out)
	return len(b.outputs) - 1
}

func (b *TxBuilder) WithInputs(refs ...OutputID) *TxBuilder {
	for _, ref := range refs {
		b.AddInput(ref)
	}
	return b
}

func (b *TxBuilder) WithOutput(owner Address, amount Amount) *TxBuilder {
	b.AddOutput(NewOutput(owner, amount))
	return b
}

func (b *TxBuilder) NumInputs() int {
	return len(b.inputs)
}

func (b *TxBuilder) SigningBytes(idx int) []byte {
	return signingBytes(b.inputs[idx].Ref, b.outputs)
}

func (b *TxBuilder) SetSignature(idx int, sig []byte) *TxBuilder {
	b.inputs[idx].Signature = sig
	return b
}

func (b *TxBuilder) SignInput(idx int, privKey ed25519.PrivateKey) *TxBuilder {
	return b.SetSignature(idx, ed25519.Sign(privKey, b.SigningBytes(idx)))
}

// SignAll signs every input with the same key
func (b *TxBuilder) SignAll(privKey ed25519.PrivateKey) *TxBuilder {
	for i := range b.inputs {
		b.SignInput(i, privKey)
	}
	return b
}

// Transaction serializes the builder's state and fixes the transaction ID
func (b *TxBuilder) Transaction() *Transaction {
	ret := &Transaction{
		inputs:  make([]Input, len(b.inputs)),
		outputs: make([]Output, len(b.outputs)),
	}
	copy(ret.inputs, b.inputs)
	copy(ret.outputs, b.outputs)
	for i := range ret.inputs {
		ret.inputs[i].Signature = append([]byte(nil), ret.inputs[i].Signature...)
	}
	ret.bytes = encodeTransaction(ret.inputs, ret.outputs)
	ret.id = blake2b.Sum256(ret.bytes)
	return ret
}
