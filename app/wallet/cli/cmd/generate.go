package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/powledger/powledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	mnemonic   bool
	passphrase string
	force      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new wallet",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVarP(&mnemonic, "mnemonic", "m", false, "Derive the key from a new mnemonic phrase.")
	generateCmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase mixed into the mnemonic seed.")
	generateCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing wallet.")
}

func generateRun(cmd *cobra.Command, args []string) error {
	path := getWalletPath()

	if _, err := os.Stat(path); !force && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("wallet %s already exists, use --force to overwrite", path)
	}

	var id *signature.Identity
	switch mnemonic {
	case true:
		words, err := signature.NewMnemonic()
		if err != nil {
			return err
		}

		id, err = signature.FromMnemonic(words, passphrase)
		if err != nil {
			return err
		}

		pterm.Warning.Println("Write down the mnemonic, it is the only way to recover the wallet:")
		pterm.Println(words)

	default:
		var err error
		id, err = signature.Generate()
		if err != nil {
			return err
		}
	}

	if err := signature.SaveWallet(path, id); err != nil {
		return err
	}

	pterm.Success.Printfln("Wallet saved to %s", path)
	pterm.Info.Printfln("Address: %s", id.Address())

	return nil
}
