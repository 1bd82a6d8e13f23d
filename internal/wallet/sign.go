package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/wlminter/internal/host"
)

// Signer holds an unlocked key.
type Signer struct {
	wallet *Wallet
	key    *ecdsa.PrivateKey
}

// Wallet returns the wallet the key belongs to.
func (s *Signer) Wallet() *Wallet {
	return s.wallet
}

// Address returns the account address derived from the key.
func (s *Signer) Address() host.Addr {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignMessage signs message using EIP-191 (personal_sign) and returns a
// 65-byte R || S || V signature with V in {27, 28}.
func (s *Signer) SignMessage(message []byte) ([]byte, error) {
	sig, err := crypto.Sign(host.PersonalHash(message), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}
	sig[64] += 27
	return sig, nil
}

// SignTx fills in the sender when unset and signs the transaction.
func (s *Signer) SignTx(tx host.Tx) (host.SignedTx, error) {
	addr := s.Address()
	switch tx.Sender {
	case host.Addr{}:
		tx.Sender = addr
	case addr:
	default:
		return host.SignedTx{}, fmt.Errorf("tx sender %s does not match wallet %s", tx.Sender.Hex(), addr.Hex())
	}
	raw, err := tx.SignBytes()
	if err != nil {
		return host.SignedTx{}, err
	}
	sig, err := s.SignMessage(raw)
	if err != nil {
		return host.SignedTx{}, err
	}
	return host.SignedTx{Tx: tx, Signature: sig}, nil
}

// VerifyMessage recovers the signer address from an EIP-191 signature.
func VerifyMessage(message, sig []byte) (host.Addr, error) {
	return host.RecoverSigner(message, sig)
}
