package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

var balanceDenom string

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Native funds on the local ledger",
}

var bankFundCmd = &cobra.Command{
	Use:   "fund <account> <coins>",
	Short: "Create funds for an account, e.g. fund whale 100000000000000000000aarch",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		coins, err := host.ParseCoins(args[1])
		if err != nil {
			return err
		}
		return withNode(func(n *node) error {
			addr, err := n.resolveAccount(args[0])
			if err != nil {
				return err
			}
			if err := n.app.Mint(cmd.Context(), addr, coins); err != nil {
				return fmt.Errorf("funding %s: %w", addr.Hex(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Funded %s with %s", ui.Addr(addr.Hex()), ui.Val(coins.String()))))
			return nil
		})
	},
}

var bankBalanceCmd = &cobra.Command{
	Use:   "balance <account>",
	Short: "Show an account's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			addr, err := n.resolveAccount(args[0])
			if err != nil {
				return err
			}
			denom := balanceDenom
			if denom == "" {
				denom = cfg.Denom
			}
			bal, err := n.app.Balance(addr, denom)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Addr(addr.Hex()), ui.Val(bal.Dec()+denom))
			return nil
		})
	},
}

func init() {
	bankBalanceCmd.Flags().StringVar(&balanceDenom, "denom", "", "denomination (default: configured denom)")
	bankCmd.AddCommand(bankFundCmd, bankBalanceCmd)
}
