// Command paddock runs a motorsport management simulation from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/paddock/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
