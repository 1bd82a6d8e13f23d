package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/contract"
	"github.com/Mohsinsiddi/wlminter/internal/sync"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Manage contract aliases",
}

var contractsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contract aliases on the current chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			t := ui.NewTable(ui.Column{Title: "ALIAS"}, ui.Column{Title: "ADDRESS"}, ui.Column{Title: "CODE"}, ui.Column{Title: "ADMIN"})
			for _, e := range n.book.All() {
				if e.Chain != cfg.ChainID {
					continue
				}
				admin := "?"
				if info, err := n.app.ContractInfo(e.Address); err == nil {
					admin = ui.TruncateAddr(info.Admin.Hex())
				}
				t.AddRow(e.Name, e.Address.Hex(), e.Code, admin)
			}
			fmt.Fprint(cmd.OutOrStdout(), t.Render())
			return nil
		})
	},
}

var contractsAddCmd = &cobra.Command{
	Use:   "add <alias> <address>",
	Short: "Save an existing contract under an alias",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !common.IsHexAddress(args[1]) {
			return fmt.Errorf("invalid address %q", args[1])
		}
		return withNode(func(n *node) error {
			addr := common.HexToAddress(args[1])
			info, err := n.app.ContractInfo(addr)
			if err != nil {
				return err
			}
			n.book.Add(&contract.Entry{Name: args[0], Chain: cfg.ChainID, Address: addr, Code: info.Code, Label: info.Label})
			if err := n.book.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Saved %s as %q", ui.Addr(addr.Hex()), args[0])))
			return nil
		})
	},
}

var contractsRemoveCmd = &cobra.Command{
	Use:   "remove <alias>",
	Short: "Forget an alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			if err := n.book.Remove(args[0], cfg.ChainID); err != nil {
				return err
			}
			if err := n.book.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Alias %q removed.", args[0])))
			return nil
		})
	},
}

var contractsImportCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Import aliases from a deployments manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			count, err := sync.New(n.book, n.app, cfg.ChainID, logger).Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Imported %d contract(s)", count)))
			return nil
		})
	},
}

var contractsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the alias book as a deployments manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			var buf bytes.Buffer
			if err := sync.WriteManifest(&buf, sync.New(n.book, n.app, cfg.ChainID, logger).Export()); err != nil {
				return err
			}
			if len(args) == 0 {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return os.WriteFile(args[0], buf.Bytes(), 0o600)
		})
	},
}

func init() {
	contractsCmd.AddCommand(contractsListCmd, contractsAddCmd, contractsRemoveCmd, contractsImportCmd, contractsExportCmd)
}
