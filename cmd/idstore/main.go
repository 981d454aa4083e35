// Package main implements idstore, an administration CLI for the identity
// document store. It opens the configured backend, applies migrations and
// manages users, roles and role membership from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes one command line and closes the backend afterwards, whether
// or not the command succeeded. A failure while closing is reported when
// the command itself succeeded.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	app := &application{}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			fmt.Fprintln(stderr, "Error:", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}()

	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
