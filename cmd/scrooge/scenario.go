package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lunfardo314/scroogeutxo/ledger"
	"github.com/lunfardo314/scroogeutxo/ledger/pipeline"
	"github.com/lunfardo314/scroogeutxo/ledger/utxodb"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type (
	// Scenario is the YAML description of a run. Keys are indices of deterministic addresses of the UTXODB
	Scenario struct {
		Genesis []Allocation `yaml:"genesis"`
		Epochs  []Epoch      `yaml:"epochs"`
	}

	Allocation struct {
		Key    uint16 `yaml:"key"`
		Amount int64  `yaml:"amount"`
	}

	Epoch struct {
		Transfers []Transfer `yaml:"transfers"`
	}

	Transfer struct {
		From   uint16 `yaml:"from"`
		To     uint16 `yaml:"to"`
		Amount int64  `yaml:"amount"`
	}

	EpochResult struct {
		Submitted int
		Skipped   int
		Accepted  []ledger.TransactionID
	}

	Report struct {
		Epochs   []EpochResult
		Balances map[uint16]ledger.Amount
		PoolSize int
	}
)

func LoadScenario(fname string) (*Scenario, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	ret := &Scenario{}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("wrong scenario: %v", err)
	}
	for i, a := range ret.Genesis {
		if a.Amount <= 0 {
			return nil, fmt.Errorf("wrong scenario: genesis allocation #%d: amount must be positive", i)
		}
	}
	return ret, nil
}

// keys returns all key indices mentioned in the scenario, sorted
func (s *Scenario) keys() []uint16 {
	m := make(map[uint16]struct{})
	for _, a := range s.Genesis {
		m[a.Key] = struct{}{}
	}
	for _, e := range s.Epochs {
		for _, tr := range e.Transfers {
			m[tr.From] = struct{}{}
			m[tr.To] = struct{}{}
		}
	}
	ret := make([]uint16, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Run funds genesis allocations from the faucet, then submits each epoch as one batch through the pipeline.
// Transfers of an epoch are built against the pool as it is at the start of the epoch,
// so transfers from the same key in one epoch compete for the same outputs
func (s *Scenario) Run(u *utxodb.UTXODB, log *zap.SugaredLogger) (*Report, error) {
	for i, a := range s.Genesis {
		_, _, addr := u.GenerateAddress(a.Key)
		if err := u.TokensFromFaucet(addr, ledger.Amount(a.Amount)); err != nil {
			return nil, fmt.Errorf("genesis allocation #%d: %v", i, err)
		}
	}

	pipe := pipeline.New(u.Handler(), log)
	pipe.Start()
	defer pipe.Stop()

	ret := &Report{
		Epochs:   make([]EpochResult, len(s.Epochs)),
		Balances: make(map[uint16]ledger.Amount),
	}
	for i, e := range s.Epochs {
		res := &ret.Epochs[i]
		txs := make([]*ledger.Transaction, 0, len(e.Transfers))
		for j, tr := range e.Transfers {
			priv, _, _ := u.GenerateAddress(tr.From)
			_, _, target := u.GenerateAddress(tr.To)
			tx, err := u.MakeTransfer(priv, target, ledger.Amount(tr.Amount))
			if err != nil {
				log.Warnf("epoch %d, transfer #%d skipped: %v", i, j, err)
				res.Skipped++
				continue
			}
			txs = append(txs, tx)
		}
		res.Submitted = len(txs)
		// the next epoch is built against the pool updated by this one
		done := make(chan []*ledger.Transaction, 1)
		ok := pipe.Submit(txs, func(_ uint64, accepted []*ledger.Transaction) {
			done <- accepted
		})
		if !ok {
			return nil, fmt.Errorf("epoch %d: pipeline is stopped", i)
		}
		for _, tx := range <-done {
			res.Accepted = append(res.Accepted, tx.ID())
		}
	}
	for _, k := range s.keys() {
		_, _, addr := u.GenerateAddress(k)
		ret.Balances[k] = u.Balance(addr)
	}
	ret.PoolSize = u.Pool().Len()
	return ret, nil
}

func (r *Report) Write(w io.Writer) {
	for i, e := range r.Epochs {
		_, _ = fmt.Fprintf(w, "epoch %d: submitted %d, skipped %d, accepted %d\n", i, e.Submitted, e.Skipped, len(e.Accepted))
		for _, txid := range e.Accepted {
			_, _ = fmt.Fprintf(w, "    %s\n", txid.String())
		}
	}
	keys := make([]uint16, 0, len(r.Balances))
	for k := range r.Balances {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	_, _ = fmt.Fprintf(w, "balances:\n")
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "    key %d: %d\n", k, r.Balances[k])
	}
	_, _ = fmt.Fprintf(w, "pool size: %d\n", r.PoolSize)
}
