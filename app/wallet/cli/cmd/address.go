package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for the specific wallet",
	RunE:  addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) error {
	id, err := loadWallet()
	if err != nil {
		return err
	}

	pterm.Println(id.Address())
	return nil
}
