package utxodb

import (
	"math"
	"testing"

	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/scroogeutxo/ledger"
	"github.com/lunfardo314/scroogeutxo/ledger/txhandler"
	"github.com/lunfardo314/scroogeutxo/ledger/utxopool"
	"github.com/stretchr/testify/require"
)

func TestUTXODB(t *testing.T) {
	t.Run("genesis", func(t *testing.T) {
		u := NewUTXODB(true)
		out, found := u.Pool().Get(&ledger.GenesisOutputID)
		require.True(t, found)
		require.EqualValues(t, u.Supply(), out.Amount)
		require.EqualValues(t, u.GenesisAddress(), out.Owner)
		require.EqualValues(t, 1, u.NumUTXOs(u.GenesisAddress()))
		require.EqualValues(t, u.Supply(), u.Balance(u.GenesisAddress()))
		_, pub := u.GenesisKeys()
		require.EqualValues(t, u.GenesisAddress(), ledger.AddressFromPublicKey(pub))
	})
	t.Run("deterministic addresses", func(t *testing.T) {
		u1 := NewUTXODB()
		u2 := NewUTXODB()
		_, _, a1 := u1.GenerateAddress(1)
		_, _, a2 := u2.GenerateAddress(1)
		_, _, a3 := u2.GenerateAddress(2)
		require.EqualValues(t, a1, a2)
		require.NotEqualValues(t, a1, a3)
		require.EqualValues(t, u1.GenesisAddress(), u2.GenesisAddress())
	})
	t.Run("faucet", func(t *testing.T) {
		u := NewUTXODB(true)
		_, _, addr := u.GenerateAddress(1)
		err := u.TokensFromFaucet(addr, 10000)
		require.NoError(t, err)
		require.EqualValues(t, 1, u.NumUTXOs(u.GenesisAddress()))
		require.EqualValues(t, u.Supply()-10000, u.Balance(u.GenesisAddress()))
		require.EqualValues(t, 10000, u.Balance(addr))
		require.EqualValues(t, 1, u.NumUTXOs(addr))

		err = u.TokensFromFaucet(addr)
		require.NoError(t, err)
		require.EqualValues(t, 10000+TokensFromFaucetDefault, u.Balance(addr))
		require.EqualValues(t, 2, u.NumUTXOs(addr))
	})
	t.Run("simple transfer", func(t *testing.T) {
		u := NewUTXODB(true)
		privKey1, _, addr1 := u.GenerateAddress(1)
		err := u.TokensFromFaucet(addr1, 10000)
		require.NoError(t, err)

		_, _, addrNext := u.GenerateAddress(2)
		err = u.TransferTokens(privKey1, addrNext, 1000)
		require.NoError(t, err)
		require.EqualValues(t, u.Supply()-10000, u.Balance(u.GenesisAddress()))
		require.EqualValues(t, 10000-1000, u.Balance(addr1))
		require.EqualValues(t, 1, u.NumUTXOs(addr1))
		require.EqualValues(t, 1000, u.Balance(addrNext))
		require.EqualValues(t, 1, u.NumUTXOs(addrNext))
	})
	t.Run("transfer all", func(t *testing.T) {
		u := NewUTXODB()
		privKey1, _, addr1 := u.GenerateAddress(1)
		require.NoError(t, u.TokensFromFaucet(addr1, 100))
		require.NoError(t, u.TokensFromFaucet(addr1, 200))
		_, _, addr2 := u.GenerateAddress(2)
		require.NoError(t, u.TransferTokens(privKey1, addr2, 300))
		require.EqualValues(t, 0, u.Balance(addr1))
		require.EqualValues(t, 0, u.NumUTXOs(addr1))
		require.EqualValues(t, 300, u.Balance(addr2))
	})
	t.Run("not enough", func(t *testing.T) {
		u := NewUTXODB()
		privKey1, _, addr1 := u.GenerateAddress(1)
		require.NoError(t, u.TokensFromFaucet(addr1, 100))
		_, _, addr2 := u.GenerateAddress(2)
		err := u.TransferTokens(privKey1, addr2, 101)
		easyfl.RequireErrorWith(t, err, "not enough tokens")
		_, err = u.MakeTransfer(privKey1, addr2, -1)
		easyfl.RequireErrorWith(t, err, "negative")
	})
	t.Run("transfer wrong key", func(t *testing.T) {
		u := NewUTXODB(true)
		privKey1, _, addr1 := u.GenerateAddress(1)
		require.NoError(t, u.TokensFromFaucet(addr1, 10000))

		_, _, addrNext := u.GenerateAddress(2)
		privKeyWrong, _, _ := u.GenerateAddress(3)
		tx, err := u.MakeTransfer(privKey1, addrNext, 1000)
		require.NoError(t, err)

		forged := ledger.NewTxBuilder()
		tx.ForEachInput(func(_ int, in *ledger.Input) bool {
			forged.AddInput(in.Ref)
			return true
		})
		tx.ForEachOutput(func(_ byte, out ledger.Output) bool {
			forged.AddOutput(out)
			return true
		})
		err = u.AddTransaction(forged.SignAll(privKeyWrong).Transaction())
		require.ErrorIs(t, err, txhandler.ErrInvalidSignature)
		require.EqualValues(t, 10000, u.Balance(addr1))

		require.NoError(t, u.AddTransaction(tx))
		err = u.AddTransaction(tx)
		require.ErrorIs(t, err, txhandler.ErrUnknownInput)
	})
}

func TestBatch(t *testing.T) {
	u := NewUTXODB()
	priv1, _, addr1 := u.GenerateAddress(1)
	_, _, addr2 := u.GenerateAddress(2)
	_, _, addr3 := u.GenerateAddress(3)
	require.NoError(t, u.TokensFromFaucet(addr1, 1000))

	// both transfers are built against the same pool state and spend the same output
	tx1, err := u.MakeTransfer(priv1, addr2, 600)
	require.NoError(t, err)
	tx2, err := u.MakeTransfer(priv1, addr3, 600)
	require.NoError(t, err)

	accepted := u.AddBatch([]*ledger.Transaction{tx1, tx2})
	require.EqualValues(t, 1, len(accepted))
	require.EqualValues(t, 600, u.Balance(addr2))
	require.EqualValues(t, 0, u.Balance(addr3))
	require.EqualValues(t, 400, u.Balance(addr1))

	// the rejected one is not revisited, the next epoch rejects it again as a double spend
	require.EqualValues(t, 0, len(u.AddBatch([]*ledger.Transaction{tx2})))
}

func TestOverflowingOutputs(t *testing.T) {
	u := NewUTXODB()
	priv1, _, addr1 := u.GenerateAddress(1)
	_, _, addr2 := u.GenerateAddress(2)

	// outputs are consumed in the order of outputIDs: 10 first, then MaxInt64
	var txid ledger.TransactionID
	txid[0] = 0x01
	u.handler = txhandler.New(utxopool.FromOutputs(map[ledger.OutputID]ledger.Output{
		ledger.NewOutputID(txid, 0): ledger.NewOutput(addr1, 10),
		ledger.NewOutputID(txid, 1): ledger.NewOutput(addr1, math.MaxInt64),
	}))

	tx, err := u.MakeTransfer(priv1, addr2, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, tx.NumInputs())

	_, err = u.MakeTransfer(priv1, addr2, 20)
	easyfl.RequireErrorWith(t, err, "overflow")

	require.EqualValues(t, 2, u.NumUTXOs(addr1))
	require.Panics(t, func() {
		u.Balance(addr1)
	})
}
