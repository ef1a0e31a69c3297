// Package main provides the CLI for nbalance.
package main

import "github.com/denysvitali/nbalance/cmd"

func main() {
	cmd.Execute()
}
