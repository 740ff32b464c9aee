package main

import "github.com/digital-business-cards/walletpass/internal/cli"

func main() {
	cli.Execute()
}
