package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/minter"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

var (
	mintFunds          string
	updateConfigFile   string
	updateRegistryFlag string
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint the next token, paying --funds",
	RunE: func(cmd *cobra.Command, args []string) error {
		var funds host.Coins
		if mintFunds != "" {
			var err error
			if funds, err = host.ParseCoins(mintFunds); err != nil {
				return err
			}
		}
		return withNode(func(n *node) error {
			rcpt, err := n.execute(cmd.Context(), minter.ExecuteMsg{Mint: &minter.Empty{}}, funds)
			if err != nil {
				return fmt.Errorf("executing mint: %w", err)
			}
			id, _ := rcpt.Attribute("token_id")
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Minted token "+ui.Val(id)))
			printReceipt(cmd.OutOrStdout(), "Receipt", rcpt)
			return nil
		})
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Owner-only phase transitions",
}

// phaseCommand builds one admin subcommand.
func phaseCommand(use, short string, msg minter.ExecuteMsg) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(cmd, short+"?") {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
			return withNode(func(n *node) error {
				rcpt, err := n.execute(cmd.Context(), msg, nil)
				if err != nil {
					return fmt.Errorf("executing %s: %w", use, err)
				}
				printReceipt(cmd.OutOrStdout(), use, rcpt)
				return nil
			})
		},
	}
}

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Approve or remove whitelist members",
}

// whitelistCommand builds approve or remove for both tracks.
func whitelistCommand(approve bool) *cobra.Command {
	use, verb := "remove", "Remove"
	if approve {
		use, verb = "approve", "Approve"
	}
	return &cobra.Command{
		Use:   use + " <public|private> <account...>",
		Short: verb + " addresses on a whitelist track",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := minter.ParseTrack(args[0])
			if err != nil {
				return err
			}
			return withNode(func(n *node) error {
				members, err := n.resolveAccounts(args[1:])
				if err != nil {
					return err
				}
				if !approve && !confirm(cmd, fmt.Sprintf("Remove %d address(es) from the %s whitelist?", len(members), track)) {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
					return nil
				}
				rcpt, err := n.execute(cmd.Context(), whitelistMsg(track, approve, members), nil)
				if err != nil {
					return fmt.Errorf("executing whitelist %s: %w", use, err)
				}
				printReceipt(cmd.OutOrStdout(), fmt.Sprintf("%s whitelist %s", track, use), rcpt)
				return nil
			})
		},
	}
}

func whitelistMsg(track minter.Track, approve bool, members []host.Addr) minter.ExecuteMsg {
	body := &minter.WhitelistMsg{Members: members}
	switch {
	case track == minter.TrackPrivate && approve:
		return minter.ExecuteMsg{PrivateWhitelistApprove: body}
	case track == minter.TrackPrivate:
		return minter.ExecuteMsg{PrivateWhitelistRemove: body}
	case approve:
		return minter.ExecuteMsg{PublicWhitelistApprove: body}
	default:
		return minter.ExecuteMsg{PublicWhitelistRemove: body}
	}
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Send sale proceeds to the artist (artist only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := uint256.FromDecimal(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		if !confirm(cmd, fmt.Sprintf("Withdraw %s%s?", amount.Dec(), cfg.Denom)) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
			return nil
		}
		return withNode(func(n *node) error {
			rcpt, err := n.execute(cmd.Context(), minter.ExecuteMsg{Withdraw: &minter.WithdrawMsg{Amount: amount}}, nil)
			if err != nil {
				return fmt.Errorf("executing withdraw: %w", err)
			}
			printReceipt(cmd.OutOrStdout(), "Withdraw", rcpt)
			return nil
		})
	},
}

var updateConfigCmd = &cobra.Command{
	Use:   "update-config",
	Short: "Replace the minter configuration (owner only)",
	Long: `Replace the whole minter configuration with --file, a JSON state record:

  {"owner":"0x..","cw721":"0x..","artist":"0x..","supply":3333,"phase":"disabled",
   "private_whitelist_allowance":5,"public_whitelist_allowance":5,
   "price":"10000000000000000000","name_prefix":"Archies #"}

With --registry instead, the current configuration is kept and only the
registry address changes. The replace is unchecked: it can move the phase
backwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (updateConfigFile == "") == (updateRegistryFlag == "") {
			return fmt.Errorf("exactly one of --file or --registry is required")
		}
		return withNode(func(n *node) error {
			var state minter.State
			if updateConfigFile != "" {
				data, err := os.ReadFile(updateConfigFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &state); err != nil {
					return fmt.Errorf("parsing %s: %w", updateConfigFile, err)
				}
			} else {
				var err error
				if state, err = n.currentState(cmd); err != nil {
					return err
				}
				if state.Registry, err = n.resolveAccount(updateRegistryFlag); err != nil {
					return err
				}
			}
			if !confirm(cmd, "Replace the minter configuration?") {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
			rcpt, err := n.execute(cmd.Context(), minter.ExecuteMsg{UpdateConfig: &minter.UpdateConfigMsg{Config: state}}, nil)
			if err != nil {
				return fmt.Errorf("executing update_config: %w", err)
			}
			printReceipt(cmd.OutOrStdout(), "Config updated", rcpt)
			return nil
		})
	},
}

// currentState rebuilds the stored state from the config query.
func (n *node) currentState(cmd *cobra.Command) (minter.State, error) {
	addr, err := n.minterAddr()
	if err != nil {
		return minter.State{}, err
	}
	var c minter.ConfigResponse
	if err := n.app.QueryJSON(cmd.Context(), addr, minter.QueryMsg{Config: &minter.Empty{}}, &c); err != nil {
		return minter.State{}, err
	}
	return minter.State{
		Owner:                     c.Owner,
		Registry:                  c.Registry,
		Artist:                    c.Artist,
		Supply:                    c.Supply,
		Phase:                     phaseOf(c),
		PrivateWhitelistAllowance: c.PrivateWhitelistAllowance,
		PublicWhitelistAllowance:  c.WhitelistAllowance,
		Price:                     c.Price,
		NamePrefix:                c.NamePrefix,
	}, nil
}

func phaseOf(c minter.ConfigResponse) minter.Phase {
	switch {
	case c.Reveal:
		return minter.PhaseReveal
	case c.PublicMint:
		return minter.PhasePublic
	case c.PublicWhitelist:
		return minter.PhaseNormalWhitelist
	case c.Initialized:
		return minter.PhasePrivateWhitelist
	default:
		return minter.PhaseDisabled
	}
}

var revealCmd = &cobra.Command{
	Use:   "reveal <token_id>",
	Short: "Reveal a token's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			rcpt, err := n.execute(cmd.Context(), minter.ExecuteMsg{Reveal: &minter.RevealMsg{TokenID: args[0]}}, nil)
			if err != nil {
				return fmt.Errorf("executing reveal: %w", err)
			}
			printReceipt(cmd.OutOrStdout(), "Reveal", rcpt)
			return nil
		})
	},
}

var migrateCode string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the minter to the installed code version (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "Migrate "+contractRef+"?") {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
			return nil
		}
		return withNode(func(n *node) error {
			addr, err := n.minterAddr()
			if err != nil {
				return err
			}
			s, err := n.signer()
			if err != nil {
				return err
			}
			raw, err := json.Marshal(minter.MigrateMsg{})
			if err != nil {
				return err
			}
			rcpt, err := n.send(cmd.Context(), s, host.Tx{Kind: host.TxMigrate, Contract: addr, Code: migrateCode, Msg: raw})
			if err != nil {
				return fmt.Errorf("executing migrate: %w", err)
			}
			printReceipt(cmd.OutOrStdout(), "Migrated", rcpt)
			return nil
		})
	},
}

func init() {
	mintCmd.Flags().StringVar(&mintFunds, "funds", "", "payment, e.g. 10000000000000000000aarch")

	adminCmd.AddCommand(
		phaseCommand("initialize", "Open the private whitelist sale", minter.ExecuteMsg{Initialize: &minter.Empty{}}),
		phaseCommand("enable-normal-whitelist", "Open the public whitelist sale", minter.ExecuteMsg{EnableNormalWhitelist: &minter.Empty{}}),
		phaseCommand("enable-public-mint", "Open the public sale", minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}),
		phaseCommand("enable-reveal", "End the sale and enable reveal", minter.ExecuteMsg{EnableReveal: &minter.Empty{}}),
	)

	whitelistCmd.AddCommand(whitelistCommand(true), whitelistCommand(false))

	updateConfigCmd.Flags().StringVar(&updateConfigFile, "file", "", "JSON state record")
	updateConfigCmd.Flags().StringVar(&updateRegistryFlag, "registry", "", "registry alias or address")

	migrateCmd.Flags().StringVar(&migrateCode, "code", "", "code to migrate to (default: keep current)")
}
