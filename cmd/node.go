package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/contract"
	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/minter"
	"github.com/Mohsinsiddi/wlminter/internal/registry"
	"github.com/Mohsinsiddi/wlminter/internal/store/sqlite"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
	"github.com/Mohsinsiddi/wlminter/internal/wallet"
)

var errNoWallet = errors.New("no wallet selected")

// node is one CLI invocation's view of the ledger: the host over SQLite,
// the contract book and, on demand, the wallets.
type node struct {
	store   *sqlite.Store
	app     *host.App
	book    *contract.Registry
	wallets *wallet.Manager
}

func openNode() (*node, error) {
	variant, err := minter.ParseVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}
	book, err := contract.Open(cfg.ContractsPath())
	if err != nil {
		return nil, fmt.Errorf("loading contracts: %w", err)
	}
	store, err := sqlite.Open(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	app := host.NewApp(store, host.WithLogger(logger), host.WithChainID(cfg.ChainID))
	app.StoreCode(registry.Code())
	app.StoreCode(minter.Code(minter.ContractName, minter.WithVariant(variant), minter.WithDenom(cfg.Denom)))

	return &node{store: store, app: app, book: book}, nil
}

func (n *node) Close() error {
	return n.store.Close()
}

// walletManager opens the keystore the first time it is needed so that
// read-only commands never prompt for a passphrase.
func (n *node) walletManager() (*wallet.Manager, error) {
	if n.wallets != nil {
		return n.wallets, nil
	}
	ks, err := openKeystore()
	if err != nil {
		return nil, err
	}
	n.wallets = newWalletManager(ks)
	return n.wallets, nil
}

func newWalletManager(ks wallet.KeystoreBackend) *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewConfigStore(cfg)), wallet.WithKeystore(ks))
}

func openKeystore() (wallet.KeystoreBackend, error) {
	prompt := keyring.TerminalPrompt
	if cfg.KeyringPassphrase != "" {
		prompt = keyring.FixedStringPrompt(cfg.KeyringPassphrase)
	}
	ks, err := wallet.OpenKeystore(wallet.KeystoreConfig{
		Dir:        cfg.Dir(),
		Passphrase: prompt,
		FileOnly:   cfg.Keyring == "file",
	})
	if err != nil {
		return nil, err
	}
	return ks, nil
}

// signer picks the signing wallet: --from, then the configured default,
// then an interactive picker.
func (n *node) signer() (*wallet.Signer, error) {
	mgr, err := n.walletManager()
	if err != nil {
		return nil, err
	}
	name := fromWallet
	if name == "" {
		name = cfg.DefaultWallet
	}
	if name != "" {
		return mgr.Signer(name)
	}
	s, err := mgr.Signer("")
	if !errors.Is(err, wallet.ErrNoDefault) {
		return s, err
	}

	wallets, err := mgr.List()
	if err != nil {
		return nil, err
	}
	items := make([]ui.PickerItem, 0, len(wallets))
	for _, w := range wallets {
		if w.Type == wallet.TypeSigning {
			items = append(items, ui.PickerItem{Label: w.Name, SubLabel: w.Address, Value: w.Name})
		}
	}
	picked, err := ui.PickItem("Sign with", items, "")
	if err != nil {
		return nil, err
	}
	if picked == "" {
		return nil, errNoWallet
	}
	return mgr.Signer(picked)
}

// send signs tx with the next sequence of s and delivers it.
func (n *node) send(ctx context.Context, s *wallet.Signer, tx host.Tx) (*host.Receipt, error) {
	seq, err := n.app.Sequence(s.Address())
	if err != nil {
		return nil, err
	}
	tx.ChainID = n.app.ChainID()
	tx.Sequence = seq
	stx, err := s.SignTx(tx)
	if err != nil {
		return nil, err
	}
	return n.app.Deliver(ctx, stx)
}

// execute sends an execute tx for the --contract minter.
func (n *node) execute(ctx context.Context, msg minter.ExecuteMsg, funds host.Coins) (*host.Receipt, error) {
	addr, err := n.minterAddr()
	if err != nil {
		return nil, err
	}
	s, err := n.signer()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return n.send(ctx, s, host.Tx{Kind: host.TxExecute, Contract: addr, Msg: raw, Funds: funds})
}

func (n *node) minterAddr() (host.Addr, error) {
	return n.book.Resolve(contractRef, cfg.ChainID)
}

// resolveAccount accepts a hex address, a wallet name or a contract alias.
func (n *node) resolveAccount(ref string) (host.Addr, error) {
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	if addr, err := n.book.Resolve(ref, cfg.ChainID); err == nil {
		return addr, nil
	}
	wf, err := cfg.LoadWallets()
	if err != nil {
		return host.Addr{}, err
	}
	for _, w := range wf.Wallets {
		if w.Name == ref {
			return common.HexToAddress(w.Address), nil
		}
	}
	return host.Addr{}, fmt.Errorf("%q is not an address, wallet or contract alias", ref)
}

func (n *node) resolveAccounts(refs []string) ([]host.Addr, error) {
	out := make([]host.Addr, 0, len(refs))
	for _, ref := range refs {
		addr, err := n.resolveAccount(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// withNode opens the ledger for the duration of fn.
func withNode(fn func(*node) error) error {
	n, err := openNode()
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(n)
}

func confirm(cmd *cobra.Command, prompt string) bool {
	if assumeYes {
		return true
	}
	p := &ui.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	return p.ConfirmDanger(prompt)
}

func printReceipt(w io.Writer, title string, r *host.Receipt) {
	pairs := [][2]string{
		{"height", strconv.FormatUint(r.Height, 10)},
		{"tx hash", r.TxHash.Hex()},
	}
	if r.Contract != (host.Addr{}) {
		pairs = append(pairs, [2]string{"contract", r.Contract.Hex()})
	}
	for _, e := range r.Events {
		for _, a := range e.Attributes {
			pairs = append(pairs, [2]string{e.Type + "." + a.Key, a.Value})
		}
	}
	fmt.Fprintln(w, ui.KeyValueBlock(title, pairs))
}
