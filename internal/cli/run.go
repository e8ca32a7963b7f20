package cli

import (
	"context"
	"errors"
	"io"
	"os"
)

// Run is the black-box CLI entrypoint: it accepts the argument slice
// (excluding argv[0]) and a console writer, and returns the finished
// Result plus any error main should print. Tests drive the whole program
// through this function.
func Run(ctx context.Context, args []string, console io.Writer) (Result, error) {
	if console == nil {
		console = os.Stdout
	}
	inv, err := ParseInvocation(args)
	if errors.Is(err, ErrHelp) {
		return Result{ExitCode: ExitSuccess}, nil
	}
	if err != nil {
		return Result{ExitCode: ExitCodeFor(err)}, err
	}
	return Execute(ctx, inv, console)
}
