package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/minter"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

var (
	initVariant string
	initDenom   string
	initChainID string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory, config and ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		if initVariant != "" {
			if _, err := minter.ParseVariant(initVariant); err != nil {
				return err
			}
			cfg.Variant = initVariant
		}
		if initDenom != "" {
			cfg.Denom = initDenom
		}
		if initChainID != "" {
			cfg.ChainID = initChainID
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		return withNode(func(n *node) error {
			keys, err := n.store.Count(cmd.Context(), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Banner(Version))
			fmt.Fprintln(out, ui.KeyValueBlock("Home", [][2]string{
				{"directory", cfg.Dir()},
				{"ledger", cfg.LedgerPath()},
				{"ledger keys", strconv.Itoa(keys)},
				{"chain id", cfg.ChainID},
				{"denom", cfg.Denom},
				{"variant", cfg.Variant},
			}))
			return nil
		})
	},
}

func init() {
	initCmd.Flags().StringVar(&initVariant, "variant", "", "minter variant: updatable or fixed")
	initCmd.Flags().StringVar(&initDenom, "denom", "", "payment denomination")
	initCmd.Flags().StringVar(&initChainID, "chain-id", "", "chain id signed into every transaction")
}
