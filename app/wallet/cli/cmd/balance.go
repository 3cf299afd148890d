package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

var address string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance of your wallet or any address.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	balanceCmd.Flags().StringVarP(&address, "address", "a", "", "Address to query instead of the wallet.")
}

func balanceRun(cmd *cobra.Command, args []string) error {
	if address == "" {
		id, err := loadWallet()
		if err != nil {
			return err
		}
		address = id.Address()
	}

	resp, err := http.Get(fmt.Sprintf("%s/v1/balance/%s", url, address))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node responded %s", resp.Status)
	}

	var bal balance
	if err := json.NewDecoder(resp.Body).Decode(&bal); err != nil {
		return err
	}

	data := pterm.TableData{
		{"Name", "Address", "Balance"},
		{bal.Name, bal.Address, strconv.FormatInt(bal.Balance, 10)},
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
