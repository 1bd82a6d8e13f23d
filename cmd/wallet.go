package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/ui"
	"github.com/Mohsinsiddi/wlminter/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage signing identities",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Import a key with --key, or add a watch-only address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()

		if walletKeyFlag == "" {
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: wlminter wallet add <name> <address>\n  Or for signing: wlminter wallet add <name> --key <private-key>")
			}
			if !common.IsHexAddress(args[1]) {
				return fmt.Errorf("invalid address %q", args[1])
			}
			addr := common.HexToAddress(args[1]).Hex()
			mgr := newWalletManager(wallet.NewInMemoryKeystore())
			if err := mgr.Add(name, &wallet.Wallet{Address: addr}); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(addr))))
			return nil
		}

		ks, err := openKeystore()
		if err != nil {
			return err
		}
		w, err := newWalletManager(ks).AddWithKey(name, walletKeyFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new key and store it in the keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		w, err := newWalletManager(ks).Generate(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q generated: %s", w.Name, ui.Addr(w.Address))))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Listing never touches keys.
		wallets, err := newWalletManager(wallet.NewInMemoryKeystore()).List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Meta("No wallets yet. Create one with: wlminter wallet generate <name>"))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "NAME"},
			ui.Column{Title: "ADDRESS"},
			ui.Column{Title: "TYPE"},
			ui.Column{Title: "DEFAULT"},
		)
		for _, w := range wallets {
			def := ""
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				def = "*"
			}
			t.AddRow(w.Name, w.Address, w.Type, def)
		}
		fmt.Fprint(out, t.Render())
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !confirm(cmd, fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
			return nil
		}
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		if err := newWalletManager(ks).Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet (interactive without a name)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager(wallet.NewInMemoryKeystore())

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			wallets, err := mgr.List()
			if err != nil {
				return err
			}
			items := make([]ui.PickerItem, 0, len(wallets))
			for _, w := range wallets {
				items = append(items, ui.PickerItem{Label: w.Name, SubLabel: w.Address, Value: w.Name})
			}
			name, err = ui.PickItem("Default wallet", items, cfg.DefaultWallet)
			if err != nil {
				return err
			}
			if name == "" {
				return errNoWallet
			}
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key to import")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}
