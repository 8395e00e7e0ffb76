// Command starview compiles Starlark view scripts against an application's
// reference libraries, in memory, and tracks the results.
package main

import (
	"os"

	"github.com/starview-labs/starview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
