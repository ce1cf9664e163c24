// Command nox is the CLI front end for the interpreter: run a script file,
// an inline expression, a watched file, or an interactive REPL.
package main

import (
	"fmt"
	"os"

	"github.com/nox-lang/nox/cmd/nox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
