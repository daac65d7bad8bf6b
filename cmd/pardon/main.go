// Command pardon drives the schema engine from the shell: merge a template
// collection into a schema, render it against a value bag, or match a
// captured response back into one (§1, §6.3 Schema API).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pardon",
		Short:         "Merge, render, and match HTTP request templates",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newMergeCmd(), newRenderCmd(), newMatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pardon: %v\n", err)
		os.Exit(1)
	}
}
