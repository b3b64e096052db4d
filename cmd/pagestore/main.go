// Command pagestore is the command-line front end of the record store.
package main

import (
	"os"

	"github.com/sushant-115/pagestore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
