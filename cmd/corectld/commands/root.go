// Package commands implements corectld's command-line surface.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "corectld",
	Short: "corectld runs the entity handle server, loan pipeline and FSM control loop",
	Long: `corectld is the daemon process hosting the entity handle table, the
zero-copy read/take/peek loan pipeline, and the cooperative single-threaded
FSM control loop, alongside an admin HTTP surface for health checks, metrics
and introspection.

Use --config to specify a configuration file, or rely on the default
location at $XDG_CONFIG_HOME/corectl/config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root cobra command, for use by tests and subcommand
// wiring.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints a formatted error to the root command's error stream.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints a formatted error and exits with status 1.
func Exit(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the corectld version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("corectld", Version)
		return nil
	},
}
