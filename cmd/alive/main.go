package main

import (
	"fmt"
	"os"

	"github.com/santoshn/alive-nj/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
