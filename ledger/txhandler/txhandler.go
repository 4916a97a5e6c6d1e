// Package txhandler validates transactions against the UTXO pool and
// selects mutually consistent subsets of transaction batches
package txhandler

import (
	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/scroogeutxo/ledger"
	"github.com/lunfardo314/scroogeutxo/ledger/utxopool"
	"go.uber.org/zap"
)

// Handler owns its pool. It is not thread safe
type Handler struct {
	pool      *utxopool.Pool
	validator Validator
	log       *zap.SugaredLogger
}

// New creates a handler with a deep copy of the pool, so the caller's pool is never touched
func New(pool *utxopool.Pool) *Handler {
	initPrometheusMetrics()
	return &Handler{
		pool:      pool.Clone(),
		validator: DefaultValidator(),
		log:       zap.NewNop().Sugar(),
	}
}

func (h *Handler) WithVerifier(verifier ledger.Verifier) *Handler {
	h.validator = NewValidator(verifier, h.validator.payload)
	return h
}

func (h *Handler) WithSigningPayload(payload ledger.SigningPayload) *Handler {
	h.validator = NewValidator(h.validator.verifier, payload)
	return h
}

func (h *Handler) WithLogger(log *zap.SugaredLogger) *Handler {
	h.log = log.Named("txhandler")
	return h
}

// Pool is the current pool of the handler. TryHandleBatch replaces it, so do not keep it across batches
func (h *Handler) Pool() *utxopool.Pool {
	return h.pool
}

func (h *Handler) IsValid(tx *ledger.Transaction) bool {
	return h.validator.IsValid(tx, h.pool)
}

func (h *Handler) Check(tx *ledger.Transaction) error {
	return h.validator.Check(tx, h.pool)
}

// HandleBatch accepts valid and mutually consistent transactions from the batch and updates the pool
func (h *Handler) HandleBatch(txs []*ledger.Transaction) []*ledger.Transaction {
	return handleBatch(h.validator, txs, h.pool, h.log)
}

// TryHandleBatch is HandleBatch which recovers from a panic (for example in an injected verifier).
// The batch is handled on a copy of the pool, the copy replaces the pool only on success.
// On error the pool is unchanged and nothing is accepted
func (h *Handler) TryHandleBatch(txs []*ledger.Transaction) ([]*ledger.Transaction, error) {
	pool := h.pool.Clone()
	var accepted []*ledger.Transaction
	err := easyfl.CatchPanicOrError(func() error {
		accepted = handleBatch(h.validator, txs, pool, h.log)
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.pool = pool
	return accepted, nil
}

// HandleBatch is the stateless form of Handler.HandleBatch: the pool is mutated in place
func HandleBatch(txs []*ledger.Transaction, pool *utxopool.Pool, validator ...Validator) []*ledger.Transaction {
	initPrometheusMetrics()
	v := DefaultValidator()
	if len(validator) > 0 {
		v = validator[0]
	}
	return handleBatch(v, txs, pool, zap.NewNop().Sugar())
}

// IsValid checks the transaction with the default validator
func IsValid(tx *ledger.Transaction, pool utxopool.Reader) bool {
	return DefaultValidator().IsValid(tx, pool)
}

// handleBatch processes unique transactions in the order of submission, each against the current
// state of the pool, which includes changes made by the transactions accepted earlier in the batch.
// Each transaction is evaluated exactly once
func handleBatch(v Validator, txs []*ledger.Transaction, pool *utxopool.Pool, log *zap.SugaredLogger) []*ledger.Transaction {
	prometheusBatches.Inc()

	candidates, dups := dedup(txs)
	if dups > 0 {
		prometheusDuplicates.Add(float64(dups))
	}
	accepted := make([]*ledger.Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if err := v.Check(tx, pool); err != nil {
			prometheusRejected.WithLabelValues(rejectReason(err)).Inc()
			log.Debugf("rejected %s: %v", tx.ID().Short(), err)
			continue
		}
		accepted = append(accepted, tx)
		updatePool(pool, tx)
		prometheusAccepted.Inc()
		log.Debugf("accepted %s", tx.ID().Short())
	}
	log.Infof("batch: %d candidates, %d unique, %d accepted, pool size %d", len(txs), len(candidates), len(accepted), pool.Len())
	return accepted
}

// dedup collapses transactions with the same ID, keeping the first occurrence. Nils are dropped
func dedup(txs []*ledger.Transaction) ([]*ledger.Transaction, int) {
	seen := make(map[ledger.TransactionID]struct{}, len(txs))
	ret := make([]*ledger.Transaction, 0, len(txs))
	dups := 0
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if _, already := seen[tx.ID()]; already {
			dups++
			continue
		}
		seen[tx.ID()] = struct{}{}
		ret = append(ret, tx)
	}
	return ret, dups
}

// updatePool deletes consumed outputs and adds produced outputs
func updatePool(pool *utxopool.Pool, tx *ledger.Transaction) {
	tx.ForEachInput(func(_ int, in *ledger.Input) bool {
		pool.Remove(in.Ref)
		return true
	})
	for _, o := range tx.ProducedOutputs() {
		pool.Insert(o.ID, o.Output)
	}
}
