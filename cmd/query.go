package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/minter"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

var queryTrack string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read minter state",
}

var queryConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the minter configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			addr, err := n.minterAddr()
			if err != nil {
				return err
			}
			var c minter.ConfigResponse
			if err := n.app.QueryJSON(cmd.Context(), addr, minter.QueryMsg{Config: &minter.Empty{}}, &c); err != nil {
				return err
			}
			price := "0"
			if c.Price != nil {
				price = c.Price.Dec()
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Minter "+ui.TruncateAddr(addr.Hex()), [][2]string{
				{"phase", ui.Phase(phaseOf(c).String())},
				{"owner", c.Owner.Hex()},
				{"artist", c.Artist.Hex()},
				{"registry", c.Registry.Hex()},
				{"supply", strconv.FormatUint(c.Supply, 10)},
				{"price", price + c.Denom},
				{"public whitelist allowance", strconv.FormatUint(c.WhitelistAllowance, 10)},
				{"private whitelist allowance", strconv.FormatUint(c.PrivateWhitelistAllowance, 10)},
				{"name prefix", c.NamePrefix},
				{"initialized", ui.Flag(c.Initialized)},
				{"public whitelist", ui.Flag(c.PublicWhitelist)},
				{"public mint", ui.Flag(c.PublicMint)},
				{"reveal", ui.Flag(c.Reveal)},
			}))
			return nil
		})
	},
}

var queryWhitelistCmd = &cobra.Command{
	Use:   "whitelist <account>",
	Short: "Show whether an account is whitelisted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		track, err := minter.ParseTrack(queryTrack)
		if err != nil {
			return err
		}
		return withNode(func(n *node) error {
			addr, err := n.minterAddr()
			if err != nil {
				return err
			}
			member, err := n.resolveAccount(args[0])
			if err != nil {
				return err
			}
			var m minter.WhitelistMember
			q := minter.QueryMsg{Whitelist: &minter.WhitelistQuery{Address: member, Track: &track}}
			if err := n.app.QueryJSON(cmd.Context(), addr, q, &m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s whitelisted: %s\n", ui.Addr(member.Hex()), track, ui.Flag(m.Whitelisted))
			return nil
		})
	},
}

var queryTokenStatusesCmd = &cobra.Command{
	Use:   "token-statuses <token_id...>",
	Short: "Show which tokens have metadata attached",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(func(n *node) error {
			addr, err := n.minterAddr()
			if err != nil {
				return err
			}
			var res minter.TokenStatusesResponse
			q := minter.QueryMsg{TokenStatuses: &minter.TokenStatusesQuery{TokenIDs: args}}
			if err := n.app.QueryJSON(cmd.Context(), addr, q, &res); err != nil {
				return err
			}
			t := ui.NewTable(ui.Column{Title: "TOKEN"}, ui.Column{Title: "STATUS"}, ui.Column{Title: "NAME"})
			for _, s := range res.Revealed {
				name := ""
				if s.Extension != nil {
					name = s.Extension.Name
				}
				t.AddRow(s.TokenID, "revealed", name)
			}
			for _, s := range res.Unrevealed {
				t.AddRow(s.TokenID, "unrevealed", "")
			}
			fmt.Fprint(cmd.OutOrStdout(), t.Render())
			return nil
		})
	},
}

func init() {
	queryWhitelistCmd.Flags().StringVar(&queryTrack, "track", "public", "whitelist track: public or private")
	queryCmd.AddCommand(queryConfigCmd, queryWhitelistCmd, queryTokenStatusesCmd)
}
