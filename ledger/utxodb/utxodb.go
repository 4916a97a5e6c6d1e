package utxodb

import (
	"encoding/binary"
	"fmt"

	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/scroogeutxo/ledger"
	"github.com/lunfardo314/scroogeutxo/ledger/txhandler"
	"github.com/lunfardo314/scroogeutxo/ledger/utxopool"
	"github.com/lunfardo314/scroogeutxo/util/testutil"
	"github.com/lunfardo314/unitrie/common"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
)

// UTXODB is an in-memory ledger with the faucet: the genesis output holds the whole supply

type UTXODB struct {
	handler           *txhandler.Handler
	supply            ledger.Amount
	genesisPrivateKey ed25519.PrivateKey
	genesisPublicKey  ed25519.PublicKey
	genesisAddress    ledger.Address
}

const (
	// for determinism
	originSeed              = "scroogeutxo genesis"
	deterministicSeed       = "1234567890987654321"
	supplyForTesting        = ledger.Amount(1_000_000_000_000)
	TokensFromFaucetDefault = ledger.Amount(1_000_000)
)

func NewUTXODB(trace ...bool) *UTXODB {
	seed := blake2b.Sum256([]byte(originSeed))
	originPrivKey := ed25519.NewKeyFromSeed(seed[:])
	originPubKey := originPrivKey.Public().(ed25519.PublicKey)
	originAddr := ledger.AddressFromPublicKey(originPubKey)

	genesis := utxopool.FromOutputs(map[ledger.OutputID]ledger.Output{
		ledger.GenesisOutputID: ledger.NewOutput(originAddr, supplyForTesting),
	})
	handler := txhandler.New(genesis)
	if len(trace) > 0 && trace[0] {
		handler.WithLogger(testutil.NewSimpleLogger(true))
	}
	return &UTXODB{
		handler:           handler,
		supply:            supplyForTesting,
		genesisPrivateKey: originPrivKey,
		genesisPublicKey:  originPubKey,
		genesisAddress:    originAddr,
	}
}

func (u *UTXODB) Supply() ledger.Amount {
	return u.supply
}

func (u *UTXODB) Pool() *utxopool.Pool {
	return u.handler.Pool()
}

func (u *UTXODB) Handler() *txhandler.Handler {
	return u.handler
}

func (u *UTXODB) GenesisKeys() (ed25519.PrivateKey, ed25519.PublicKey) {
	return u.genesisPrivateKey, u.genesisPublicKey
}

func (u *UTXODB) GenesisAddress() ledger.Address {
	return u.genesisAddress
}

// AddTransaction validates the transaction and, if valid, applies it to the pool.
// Returns the reason of the rejection
func (u *UTXODB) AddTransaction(tx *ledger.Transaction) error {
	if err := u.handler.Check(tx); err != nil {
		return err
	}
	accepted := u.handler.HandleBatch([]*ledger.Transaction{tx})
	easyfl.Assert(len(accepted) == 1, "UTXODB: inconsistency: valid transaction was not accepted")
	return nil
}

// AddBatch handles the batch and returns accepted transactions
func (u *UTXODB) AddBatch(txs []*ledger.Transaction) []*ledger.Transaction {
	return u.handler.HandleBatch(txs)
}

func (u *UTXODB) TokensFromFaucet(addr ledger.Address, howMany ...ledger.Amount) error {
	amount := TokensFromFaucetDefault
	if len(howMany) > 0 && howMany[0] > 0 {
		amount = howMany[0]
	}
	tx, err := u.MakeTransfer(u.genesisPrivateKey, addr, amount)
	if err != nil {
		return fmt.Errorf("UTXODB faucet: %v", err)
	}
	return u.AddTransaction(tx)
}

func (u *UTXODB) GenerateAddress(n uint16) (ed25519.PrivateKey, ed25519.PublicKey, ledger.Address) {
	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], n)
	seed := blake2b.Sum256(common.Concat([]byte(deterministicSeed), u16[:]))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return priv, pub, ledger.AddressFromPublicKey(pub)
}

// MakeTransfer builds and signs the transaction which sends amount to the target and the remainder
// back to the sender. Sender's outputs are consumed in the order of outputIDs.
// The transaction is built against the current pool but not submitted
func (u *UTXODB) MakeTransfer(privKey ed25519.PrivateKey, target ledger.Address, amount ledger.Amount) (*ledger.Transaction, error) {
	if amount < 0 {
		return nil, fmt.Errorf("MakeTransfer: negative amount %d", amount)
	}
	sender := ledger.AddressFromPublicKey(privKey.Public().(ed25519.PublicKey))
	txb := ledger.NewTxBuilder()
	var sum ledger.Amount
	for _, o := range u.Pool().OutputsOf(sender) {
		if sum >= amount && txb.NumInputs() > 0 {
			break
		}
		if txb.NumInputs() >= ledger.MaxNumInputs {
			break
		}
		var ok bool
		if sum, ok = ledger.AddAmounts(sum, o.Output.Amount); !ok {
			return nil, fmt.Errorf("MakeTransfer: overflow while summing outputs of %s", sender.Short())
		}
		txb.AddInput(o.ID)
	}
	if sum < amount || txb.NumInputs() == 0 {
		return nil, fmt.Errorf("MakeTransfer: not enough tokens in %s: needed %d, got %d", sender.Short(), amount, sum)
	}
	txb.WithOutput(target, amount)
	if remainder := sum - amount; remainder > 0 {
		txb.WithOutput(sender, remainder)
	}
	return txb.SignAll(privKey).Transaction(), nil
}

func (u *UTXODB) TransferTokens(privKey ed25519.PrivateKey, target ledger.Address, amount ledger.Amount) error {
	tx, err := u.MakeTransfer(privKey, target, amount)
	if err != nil {
		return err
	}
	return u.AddTransaction(tx)
}

func (u *UTXODB) Balance(addr ledger.Address) ledger.Amount {
	var balance ledger.Amount
	for _, o := range u.Pool().OutputsOf(addr) {
		var ok bool
		balance, ok = ledger.AddAmounts(balance, o.Output.Amount)
		easyfl.Assert(ok, "UTXODB: overflow in the balance of %s", addr.Short())
	}
	return balance
}

func (u *UTXODB) NumUTXOs(addr ledger.Address) int {
	return len(u.Pool().OutputsOf(addr))
}
