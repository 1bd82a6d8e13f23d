package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/wlminter/internal/config"
	"github.com/Mohsinsiddi/wlminter/internal/logging"
	"github.com/Mohsinsiddi/wlminter/internal/minter"
	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/wlminter/cmd.Version=0.2.1" .
var Version = minter.Version

var (
	homeDir     string
	fromWallet  string
	contractRef string
	assumeYes   bool

	cfg    *config.Config
	logger = zerolog.Nop()
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "wlminter",
	Short: "Whitelist NFT minter on a local ledger",
	Long: `wlminter runs a phased NFT sale: private whitelist, public whitelist,
public mint, then reveal. Contracts execute on a local host whose ledger
lives in SQLite under --home. Every state change is a signed transaction
from one of your wallets.

Environment: WLMINTER_HOME, WLMINTER_CHAIN_ID, WLMINTER_DENOM,
WLMINTER_LOG_LEVEL, WLMINTER_KEYRING (auto|file), WLMINTER_KEYRING_PASSPHRASE.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(homeDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger = logging.New("wlminter", logging.ProfileRuntime, logging.Options{
			Level: cfg.LogLevel,
			Out:   cmd.ErrOrStderr(),
		})
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&homeDir, "home", "", "home directory (default: $WLMINTER_HOME or ~/.wlminter)")
	pf.StringVar(&fromWallet, "from", "", "wallet that signs transactions (default: the default wallet)")
	pf.StringVar(&contractRef, "contract", "minter", "minter alias or address")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")

	rootCmd.AddCommand(
		initCmd,
		walletCmd,
		bankCmd,
		registryCmd,
		instantiateCmd,
		mintCmd,
		adminCmd,
		whitelistCmd,
		withdrawCmd,
		updateConfigCmd,
		revealCmd,
		migrateCmd,
		queryCmd,
		contractsCmd,
	)
}
