package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astroview/voprod/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "voprodctl",
		Short:         "Inspect VO data-product resolution from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newResolveCmd())
	root.AddCommand(newGridCmd())
	root.AddCommand(newThreeColorCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("voprodctl %s (commit=%s, built=%s, go=%s)\n",
				version.Version, version.Commit, version.BuildDate, version.GoVersion)
		},
	}
}
