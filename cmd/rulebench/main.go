// Command rulebench benchmarks rule storage backends under synthetic IoT
// load.
package main

import (
	"fmt"
	"os"

	"github.com/calluna/rulebench/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
