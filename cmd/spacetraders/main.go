package main

import "github.com/andrescamacho/spacetraders-automation/internal/adapters/cli"

func main() {
	cli.Execute()
}
