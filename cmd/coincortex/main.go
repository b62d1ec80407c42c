package main

import "github.com/dyike/CoinCortex/internal/cli"

func main() {
	cli.Run()
}
