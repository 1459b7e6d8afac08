package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags; left at a dev default otherwise.
	Version = "0.1.0-dev"

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aua",
	Short: "Aua language interpreter",
	Long: `aua is the reference interpreter for Aua, a small expression-oriented
scripting language whose triple-quoted string literals are evaluated by a
language model at runtime, and whose "cast" expression converts any value
to any declared type via schema-guided model completion.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("aua version %s\n", Version))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic output")
}
