package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/contract"
	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/minter"
	"github.com/Mohsinsiddi/wlminter/internal/registry"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

var (
	registryAlias  string
	registryLabel  string
	minterAlias    string
	minterLabel    string
	registryName   string
	registrySymbol string
	registryMinter string
	paramsFile     string
	paramsRegistry string
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "The NFT registry the minter mints into",
}

var registryDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Instantiate an NFT registry whose only minter is --minter",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			minterAddr, err := n.resolveAccount(registryMinter)
			if err != nil {
				return err
			}
			return n.deploy(cmd, registry.CodeName, registryAlias, registryLabel, registry.InstantiateMsg{
				Name:   registryName,
				Symbol: registrySymbol,
				Minter: minterAddr,
			})
		})
	},
}

var instantiateCmd = &cobra.Command{
	Use:   "instantiate",
	Short: "Instantiate a minter from TOML params",
	Long: `Instantiate a whitelist minter. The signer becomes its owner.

Example params file:

  cw721 = "0x..."                       # registry; may be set later with update-config --registry
  supply = 3333
  public_whitelist_allowance = 5
  private_whitelist_allowance = 5
  public_whitelist_members = ["0x..."]
  private_whitelist_members = []
  reserved_recipient = "0x..."          # artist, receives withdrawals
  price = "10000000000000000000"
  naming_prefix = "Archies #"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := loadParams(paramsFile)
		if err != nil {
			return err
		}
		return withNode(func(n *node) error {
			if paramsRegistry != "" {
				if msg.Registry, err = n.resolveAccount(paramsRegistry); err != nil {
					return err
				}
			}
			return n.deploy(cmd, minter.ContractName, minterAlias, minterLabel, msg)
		})
	},
}

// loadParams decodes a TOML params file. Unknown keys are an error.
func loadParams(path string) (minter.InstantiateMsg, error) {
	var msg minter.InstantiateMsg
	md, err := toml.DecodeFile(path, &msg)
	if err != nil {
		return msg, fmt.Errorf("reading params: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return msg, fmt.Errorf("reading params: unknown keys %v", undecoded)
	}
	return msg, nil
}

func (n *node) deploy(cmd *cobra.Command, code, alias, label string, msg any) error {
	s, err := n.signer()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	rcpt, err := n.send(cmd.Context(), s, host.Tx{Kind: host.TxInstantiate, Code: code, Label: label, Msg: raw})
	if err != nil {
		return fmt.Errorf("instantiating %s: %w", code, err)
	}

	if alias != "" {
		n.book.Add(&contract.Entry{
			Name:    alias,
			Chain:   cfg.ChainID,
			Address: rcpt.Contract,
			Code:    code,
			Label:   label,
		})
		if err := n.book.Save(); err != nil {
			return fmt.Errorf("saving contract alias: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	printReceipt(out, "Instantiated "+code, rcpt)
	if alias != "" {
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Saved as %q", alias)))
	}
	return nil
}

func init() {
	registryDeployCmd.Flags().StringVar(&registryName, "name", "", "collection name")
	registryDeployCmd.Flags().StringVar(&registrySymbol, "symbol", "", "collection symbol")
	registryDeployCmd.Flags().StringVar(&registryMinter, "minter", "minter", "minter alias or address allowed to mint")
	registryDeployCmd.Flags().StringVar(&registryAlias, "alias", "nft", "alias to save the address under")
	registryDeployCmd.Flags().StringVar(&registryLabel, "label", "", "human readable label")
	registryDeployCmd.MarkFlagRequired("name")   //nolint:errcheck
	registryDeployCmd.MarkFlagRequired("symbol") //nolint:errcheck
	registryCmd.AddCommand(registryDeployCmd)

	instantiateCmd.Flags().StringVar(&paramsFile, "params", "", "TOML instantiate params")
	instantiateCmd.Flags().StringVar(&paramsRegistry, "registry", "", "registry alias or address, overrides cw721")
	instantiateCmd.Flags().StringVar(&minterAlias, "alias", "minter", "alias to save the address under")
	instantiateCmd.Flags().StringVar(&minterLabel, "label", "", "human readable label")
	instantiateCmd.MarkFlagRequired("params") //nolint:errcheck
}
