// Command cmed loads the CMED price list into Postgres and administers prices from the
// terminal. Flags override the environment variables read by internal/config.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := novoRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}
