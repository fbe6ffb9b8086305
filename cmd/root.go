// Package cmd implements the katamari CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🧶"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "katamari",
	Short: logo + " katamari — Context Window Budgeting Service",
	Long:  logo + " katamari — token-budget trimming for chat conversations",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(statusCmd)
}
