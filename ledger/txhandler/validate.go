package txhandler

import (
	"errors"
	"fmt"

	"github.com/lunfardo314/scroogeutxo/ledger"
	"github.com/lunfardo314/scroogeutxo/ledger/utxopool"
)

var (
	ErrUnknownInput     = errors.New("input is not in the pool")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrRepeatingInput   = errors.New("repeating input")
	ErrNegativeOutput   = errors.New("negative output value")
	ErrOverflow         = errors.New("value overflow")
	ErrUnbalanced       = errors.New("outputs exceed inputs")
)

// Validator checks single transactions against a pool. The zero value is not usable, use NewValidator
type Validator struct {
	verifier ledger.Verifier
	payload  ledger.SigningPayload
}

func NewValidator(verifier ledger.Verifier, payload ledger.SigningPayload) Validator {
	if verifier == nil {
		verifier = ledger.ED25519Verifier
	}
	if payload == nil {
		payload = ledger.DefaultSigningPayload
	}
	return Validator{
		verifier: verifier,
		payload:  payload,
	}
}

// DefaultValidator verifies ed25519 signatures over ledger.DefaultSigningPayload
func DefaultValidator() Validator {
	return NewValidator(nil, nil)
}

// IsValid is true iff Check returns nil
func (v Validator) IsValid(tx *ledger.Transaction, pool utxopool.Reader) bool {
	return v.Check(tx, pool) == nil
}

// Check returns nil if the transaction can be accepted in the pool, otherwise the reason of rejection.
// The pool is only read
func (v Validator) Check(tx *ledger.Transaction, pool utxopool.Reader) error {
	inSum, err := v.checkInputs(tx, pool)
	if err != nil {
		return err
	}
	outSum, err := checkOutputs(tx)
	if err != nil {
		return err
	}
	if outSum > inSum {
		return fmt.Errorf("%w: inputs %d, outputs %d", ErrUnbalanced, inSum, outSum)
	}
	return nil
}

// checkInputs checks inputs in their order. For each input: presence in the pool, signature, uniqueness
func (v Validator) checkInputs(tx *ledger.Transaction, pool utxopool.Reader) (ledger.Amount, error) {
	var sum ledger.Amount
	var err error
	claimed := make(map[ledger.OutputID]struct{}, tx.NumInputs())

	tx.ForEachInput(func(idx int, in *ledger.Input) bool {
		consumed, found := pool.Get(&in.Ref)
		if !found {
			err = fmt.Errorf("%w: %s @ %d", ErrUnknownInput, in.Ref.String(), idx)
			return false
		}
		if !v.verifier.Verify(consumed.Owner, v.payload(tx, idx), in.Signature) {
			err = fmt.Errorf("%w @ %d", ErrInvalidSignature, idx)
			return false
		}
		if _, already := claimed[in.Ref]; already {
			err = fmt.Errorf("%w: %s @ %d", ErrRepeatingInput, in.Ref.String(), idx)
			return false
		}
		claimed[in.Ref] = struct{}{}

		var ok bool
		if sum, ok = ledger.AddAmounts(sum, consumed.Amount); !ok {
			err = fmt.Errorf("%w: sum of inputs @ %d", ErrOverflow, idx)
			return false
		}
		return true
	})
	return sum, err
}

func checkOutputs(tx *ledger.Transaction) (ledger.Amount, error) {
	var sum ledger.Amount
	var err error
	tx.ForEachOutput(func(idx byte, out ledger.Output) bool {
		if out.Amount < 0 {
			err = fmt.Errorf("%w: %d @ %d", ErrNegativeOutput, out.Amount, idx)
			return false
		}
		var ok bool
		if sum, ok = ledger.AddAmounts(sum, out.Amount); !ok {
			err = fmt.Errorf("%w: sum of outputs @ %d", ErrOverflow, idx)
			return false
		}
		return true
	})
	return sum, err
}

// rejectReason is the metrics label of the error
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownInput):
		return "unknown_input"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrRepeatingInput):
		return "repeating_input"
	case errors.Is(err, ErrNegativeOutput):
		return "negative_output"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrUnbalanced):
		return "unbalanced"
	}
	return "other"
}
