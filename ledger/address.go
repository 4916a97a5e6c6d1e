package ledger

import (
	"errors"

	"github.com/lunfardo314/easyfl"
	"golang.org/x/crypto/ed25519"
)

const AddressLength = ed25519.PublicKeySize

// Address is the owner identity of an output: the ed25519 public key of the owner
type Address [AddressLength]byte

func AddressFromPublicKey(pubKey ed25519.PublicKey) (ret Address) {
	easyfl.Assert(len(pubKey) == AddressLength, "AddressFromPublicKey: wrong public key length")
	copy(ret[:], pubKey)
	return
}

func AddressFromBytes(data []byte) (ret Address, err error) {
	if len(data) != AddressLength {
		err = errors.New("AddressFromBytes: wrong data length")
		return
	}
	copy(ret[:], data)
	return
}

func (a Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return easyfl.Fmt(a[:])
}

func (a Address) Short() string {
	return easyfl.Fmt(a[:4]) + ".."
}
