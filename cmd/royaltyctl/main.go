package main

import "github.com/mrmbilling/royalty-ledger/internal/cli"

func main() {
	cli.Execute()
}
