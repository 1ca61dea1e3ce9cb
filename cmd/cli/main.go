package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host    string
	dryRun  bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bondiola-cli",
	Short: "A CLI to interact with the BondiolaFC server",
	Long: `A command-line interface for making requests to the various endpoints
of the BondiolaFC application.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Compute the outcome without writing or notifying")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging on the server for this request")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
