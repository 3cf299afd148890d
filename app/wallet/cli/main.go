package main

import "github.com/powledger/powledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
