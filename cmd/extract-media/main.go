package main

import (
	"context"
	"fmt"
	"os"

	"github.com/boujuan/StellarisTechCalculator/internal/cli"
)

// main stays a thin boundary: every input is canonicalized and every
// outcome is translated to an exit code inside the cli package.
func main() {
	res, err := cli.Run(context.Background(), os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(res.ExitCode)
}
