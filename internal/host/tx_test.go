package host_test

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/wlminter/internal/host"
)

func signTx(t *testing.T, tx host.Tx, keyHex string) host.SignedTx {
	t.Helper()
	key, err := crypto.HexToECDSA(keyHex)
	require.NoError(t, err)
	raw, err := tx.SignBytes()
	require.NoError(t, err)
	sig, err := crypto.Sign(host.PersonalHash(raw), key)
	require.NoError(t, err)
	return host.SignedTx{Tx: tx, Signature: sig}
}

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testKeyAddr(t *testing.T) host.Addr {
	t.Helper()
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(key.PublicKey)
}

func TestSignedTxVerify(t *testing.T) {
	sender := testKeyAddr(t)
	tx := host.Tx{
		ChainID:  "wlminter-local",
		Kind:     host.TxExecute,
		Sender:   sender,
		Msg:      json.RawMessage(`{"mint":{}}`),
		Sequence: 3,
	}
	stx := signTx(t, tx, testKey)
	require.NoError(t, stx.Verify())

	// wallets that emit V as 27/28 are accepted too
	legacy := stx
	legacy.Signature = append([]byte(nil), stx.Signature...)
	legacy.Signature[64] += 27
	require.NoError(t, legacy.Verify())

	tampered := stx
	tampered.Tx.Sequence = 4
	assert.ErrorIs(t, tampered.Verify(), host.ErrBadSignature)

	short := stx
	short.Signature = stx.Signature[:64]
	assert.ErrorIs(t, short.Verify(), host.ErrBadSignature)
}

func TestSignedTxWrongSender(t *testing.T) {
	tx := host.Tx{ChainID: "wlminter-local", Kind: host.TxExecute, Sender: host.Addr{0x01}}
	stx := signTx(t, tx, testKey)
	assert.ErrorIs(t, stx.Verify(), host.ErrBadSignature)
}

func TestTxHash(t *testing.T) {
	tx := host.Tx{ChainID: "wlminter-local", Kind: host.TxExecute, Sequence: 1}
	h1, err := tx.Hash()
	require.NoError(t, err)
	raw, err := tx.SignBytes()
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash(raw), h1)

	tx.Sequence = 2
	h2, err := tx.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestParseCoins(t *testing.T) {
	coins, err := host.ParseCoins("100aarch, 5uatom")
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, "100aarch,5uatom", coins.String())
	assert.Equal(t, "100", coins.AmountOf("aarch").Dec())
	assert.True(t, coins.AmountOf("uosmo").IsZero())

	big, err := host.ParseCoins("10000000000000000000aarch")
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000000", big[0].Amount.Dec())

	none, err := host.ParseCoins("")
	require.NoError(t, err)
	assert.Empty(t, none)

	for _, bad := range []string{"aarch", "10", "-5aarch", "1.5aarch"} {
		_, err := host.ParseCoins(bad)
		assert.Error(t, err, bad)
	}
}

func TestCoinJSON(t *testing.T) {
	raw, err := json.Marshal(host.NewCoin(42, "aarch"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"denom":"aarch","amount":"42"}`, string(raw))
}
