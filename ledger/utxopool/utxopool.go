// Package utxopool is the registry of unspent outputs: OutputID -> Output.
// An entry exists iff the output was created by an accepted transaction (or seeded)
// and was not consumed by an accepted transaction yet.
// The pool does not check signatures nor does any arithmetic. It has no locking:
// the owner must serialize access.
package utxopool

import (
	"bytes"
	"sort"

	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/scroogeutxo/ledger"
	"github.com/lunfardo314/unitrie/common"
	"github.com/lunfardo314/unitrie/immutable"
	"github.com/lunfardo314/unitrie/models/trie_blake2b"
)

type (
	// Reader is the read-only view of the pool used by validation
	Reader interface {
		Contains(oid *ledger.OutputID) bool
		Get(oid *ledger.OutputID) (ledger.Output, bool)
	}

	// Store is the key/value backend. Keys are outputID bytes, values are serialized outputs
	Store interface {
		common.KVReader
		common.BatchedUpdatable
		common.Traversable
	}

	Pool struct {
		store Store
		size  int
	}
)

// commitment model singleton
var commitmentModel = trie_blake2b.New(common.PathArity16, trie_blake2b.HashSize256)

const commitmentIdentity = "scroogeutxo pool"

func New() *Pool {
	return &Pool{
		store: common.NewInMemoryKVStore(),
	}
}

// FromOutputs seeds a new pool from the snapshot. The pool does not keep references to the map
func FromOutputs(outs map[ledger.OutputID]ledger.Output) *Pool {
	ret := New()
	w := ret.store.BatchedWriter()
	for oid, o := range outs {
		w.Set(common.Concat(oid[:]), o.Bytes())
	}
	easyfl.AssertNoError(w.Commit())
	ret.size = len(outs)
	return ret
}

// Clone makes an independent deep copy of the pool
func (p *Pool) Clone() *Pool {
	ret := New()
	w := ret.store.BatchedWriter()
	p.store.Iterator(nil).Iterate(func(k, v []byte) bool {
		w.Set(common.Concat(k), common.Concat(v))
		return true
	})
	easyfl.AssertNoError(w.Commit())
	ret.size = p.size
	return ret
}

func (p *Pool) Contains(oid *ledger.OutputID) bool {
	return len(p.store.Get(oid[:])) > 0
}

func (p *Pool) Get(oid *ledger.OutputID) (ledger.Output, bool) {
	data := p.store.Get(oid[:])
	if len(data) == 0 {
		return ledger.Output{}, false
	}
	ret, err := ledger.OutputFromBytes(data)
	easyfl.AssertNoError(err)
	return ret, true
}

// Insert adds or overwrites the entry
func (p *Pool) Insert(oid ledger.OutputID, out ledger.Output) {
	if !p.Contains(&oid) {
		p.size++
	}
	p.set(oid[:], out.Bytes())
}

// Remove deletes the entry if present
func (p *Pool) Remove(oid ledger.OutputID) {
	if !p.Contains(&oid) {
		return
	}
	p.size--
	p.set(oid[:], nil)
}

func (p *Pool) set(key, value []byte) {
	w := p.store.BatchedWriter()
	w.Set(common.Concat(key), value)
	easyfl.AssertNoError(w.Commit())
}

func (p *Pool) Len() int {
	return p.size
}

// ForEach iterates entries in the order of outputID bytes
func (p *Pool) ForEach(fun func(oid ledger.OutputID, out ledger.Output) bool) {
	for _, o := range p.sorted() {
		if !fun(o.ID, o.Output) {
			return
		}
	}
}

// Snapshot returns a copy of the pool content as a map
func (p *Pool) Snapshot() map[ledger.OutputID]ledger.Output {
	ret := make(map[ledger.OutputID]ledger.Output, p.size)
	p.iterate(func(oid ledger.OutputID, out ledger.Output) bool {
		ret[oid] = out
		return true
	})
	return ret
}

// OutputsOf returns outputs owned by the address sorted by outputID
func (p *Pool) OutputsOf(owner ledger.Address) []ledger.OutputWithID {
	ret := make([]ledger.OutputWithID, 0)
	p.ForEach(func(oid ledger.OutputID, out ledger.Output) bool {
		if out.Owner == owner {
			ret = append(ret, ledger.OutputWithID{ID: oid, Output: out})
		}
		return true
	})
	return ret
}

// Commitment is the root of the blake2b trie built over all entries of the pool.
// Pools with equal content have equal commitments
func (p *Pool) Commitment() common.VCommitment {
	store := common.NewInMemoryKVStore()
	emptyRoot := immutable.MustInitRoot(store, commitmentModel, []byte(commitmentIdentity))
	trie, err := immutable.NewTrieUpdatable(commitmentModel, store, emptyRoot)
	easyfl.AssertNoError(err)
	p.store.Iterator(nil).Iterate(func(k, v []byte) bool {
		trie.Update(k, v)
		return true
	})
	batch := store.BatchedWriter()
	root := trie.Commit(batch)
	easyfl.AssertNoError(batch.Commit())
	return root
}

func (p *Pool) iterate(fun func(oid ledger.OutputID, out ledger.Output) bool) {
	var err error
	p.store.Iterator(nil).Iterate(func(k, v []byte) bool {
		var oid ledger.OutputID
		var out ledger.Output
		if oid, err = ledger.OutputIDFromBytes(k); err != nil {
			return false
		}
		if out, err = ledger.OutputFromBytes(v); err != nil {
			return false
		}
		return fun(oid, out)
	})
	easyfl.AssertNoError(err)
}

func (p *Pool) sorted() []ledger.OutputWithID {
	ret := make([]ledger.OutputWithID, 0, p.size)
	p.iterate(func(oid ledger.OutputID, out ledger.Output) bool {
		ret = append(ret, ledger.OutputWithID{ID: oid, Output: out})
		return true
	})
	sort.Slice(ret, func(i, j int) bool {
		return bytes.Compare(ret[i].ID[:], ret[j].ID[:]) < 0
	})
	return ret
}
