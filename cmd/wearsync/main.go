package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/the-momentum/open-wearables-sync/internal/cli"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	root := cli.NewRootCommand()
	root.AddCommand(versionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			printBuildInfo()
		},
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
