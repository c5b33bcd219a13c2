// Package commands implements the CLI commands for the corectl client.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/corectl/cmd/corectl/cmdutil"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "corectl",
	Short: "corectl inspects and manages a running corectld instance",
	Long: `corectl is the command-line client for corectld's admin HTTP surface:
listing and deleting entity handle table entries, and inspecting the FSM
control loop's scheduling state.

Use "corectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "corectld admin HTTP base URL")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(handlesCmd)
	rootCmd.AddCommand(fsmCmd)
	rootCmd.AddCommand(completionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for use by tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the corectl version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println("corectl", Version)
		return nil
	},
}
