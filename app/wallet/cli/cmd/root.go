// Package cmd contains the wallet app.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/powledger/powledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	walletName string
	walletPath string
)

const (
	walletExtension = ".wallet"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&walletName, "wallet", "w", "miner", "Name of the wallet file.")
	rootCmd.PersistentFlags().StringVarP(&walletPath, "wallet-path", "p", "zblock/wallets/", "Path to the directory with wallet files.")
}

var rootCmd = &cobra.Command{
	Use:           "wallet",
	Short:         "Your simple proof of work ledger wallet",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func getWalletPath() string {
	name := walletName
	if !strings.HasSuffix(name, walletExtension) {
		name += walletExtension
	}

	return filepath.Join(walletPath, name)
}

func loadWallet() (*signature.Identity, error) {
	return signature.LoadWallet(getWalletPath())
}
