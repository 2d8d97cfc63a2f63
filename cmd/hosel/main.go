// Command hosel proposes the next configuration to evaluate from a YAML job
// file holding the search space, the constraint and past observations.
//
//	hosel suggest --config job.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "hosel",
		Short:         "Constrained density-ratio next-point selector",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSuggestCommand(os.Stdout))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
