// Command reqres-users fetches users from a reqres-compatible API.
//
// Usage:
//
//	reqres-users get 2
//	reqres-users list --json
//	reqres-users serve
//
// Configuration is read from the environment (and an optional .env file);
// REQRES_BASE_URL is required.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
