package host

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// Transaction errors.
var (
	ErrBadSignature = errors.New("signature does not match sender")
	ErrBadSequence  = errors.New("account sequence mismatch")
	ErrWrongChain   = errors.New("transaction is for another chain")
)

// TxKind selects the entry point a transaction drives.
type TxKind string

const (
	TxInstantiate TxKind = "instantiate"
	TxExecute     TxKind = "execute"
	TxMigrate     TxKind = "migrate"
)

// Tx is an unsigned transaction.
type Tx struct {
	ChainID  string          `json:"chain_id"`
	Kind     TxKind          `json:"kind"`
	Sender   Addr            `json:"sender"`
	Contract Addr            `json:"contract"`
	Code     string          `json:"code,omitempty"`
	Label    string          `json:"label,omitempty"`
	Msg      json.RawMessage `json:"msg"`
	Funds    Coins           `json:"funds"`
	Sequence uint64          `json:"sequence"`
}

// SignBytes returns the canonical bytes a wallet signs.
func (tx Tx) SignBytes() ([]byte, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("encoding tx: %w", err)
	}
	return raw, nil
}

// Hash is the Keccak-256 of the sign bytes.
func (tx Tx) Hash() (common.Hash, error) {
	raw, err := tx.SignBytes()
	if err != nil {
		return common.Hash{}, err
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(raw)
	return common.BytesToHash(h.Sum(nil)), nil
}

// SignedTx pairs a transaction with its sender's EIP-191 signature.
type SignedTx struct {
	Tx        Tx            `json:"tx"`
	Signature hexutil.Bytes `json:"signature"`
}

// PersonalHash returns the EIP-191 (personal_sign) digest of message.
func PersonalHash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256([]byte(prefix), message)
}

// RecoverSigner returns the address that produced the 65-byte R||S||V
// signature over message. V may be 0/1 or 27/28.
func RecoverSigner(message, sig []byte) (Addr, error) {
	if len(sig) != crypto.SignatureLength {
		return Addr{}, fmt.Errorf("%w: signature length %d", ErrBadSignature, len(sig))
	}
	recoverSig := make([]byte, len(sig))
	copy(recoverSig, sig)
	if recoverSig[crypto.RecoveryIDOffset] >= 27 {
		recoverSig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(PersonalHash(message), recoverSig)
	if err != nil {
		return Addr{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that the signature was produced by tx.Sender.
func (stx SignedTx) Verify() error {
	raw, err := stx.Tx.SignBytes()
	if err != nil {
		return err
	}
	signer, err := RecoverSigner(raw, stx.Signature)
	if err != nil {
		return err
	}
	if signer != stx.Tx.Sender {
		return fmt.Errorf("%w: signed by %s, sender %s", ErrBadSignature, signer.Hex(), stx.Tx.Sender.Hex())
	}
	return nil
}

// Account tracks per-sender replay protection.
type Account struct {
	Sequence uint64 `json:"sequence"`
}

var accounts = NewMap[Addr, Account]("accounts")
