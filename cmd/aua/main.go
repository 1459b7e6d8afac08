// Command aua is the Aua language's CLI: run, lex, and parse
// subcommands built on Cobra, grounded on the teacher's cmd/dwscript
// entry point.
package main

import (
	"fmt"
	"os"

	"github.com/jweissman/aua-sub000/cmd/aua/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
