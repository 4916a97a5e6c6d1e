package ledger

import (
	"golang.org/x/crypto/ed25519"
)

type (
	// Verifier checks the signature of the owner over the message
	Verifier interface {
		Verify(owner Address, msg, sig []byte) bool
	}

	VerifierFunc func(owner Address, msg, sig []byte) bool

	// SigningPayload returns exact bytes signed for the input idx of the transaction
	SigningPayload func(tx *Transaction, idx int) []byte
)

func (f VerifierFunc) Verify(owner Address, msg, sig []byte) bool {
	return f(owner, msg, sig)
}

var ED25519Verifier Verifier = VerifierFunc(func(owner Address, msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(owner.PublicKey(), msg, sig)
})

var DefaultSigningPayload SigningPayload = (*Transaction).SigningBytes
