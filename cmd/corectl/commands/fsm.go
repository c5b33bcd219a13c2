package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/corectl/cmd/corectl/cmdutil"
	"github.com/marmos91/corectl/internal/adminclient"
	"github.com/marmos91/corectl/internal/cli/output"
)

var fsmCmd = &cobra.Command{
	Use:   "fsm",
	Short: "FSM control loop inspection",
	Long: `Inspect corectld's cooperative FSM control loop.

Examples:
  # List every FSM instance, plus queue depth and armed timer count
  corectl fsm list`,
}

func init() {
	fsmCmd.AddCommand(fsmListCmd)
}

var fsmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List FSM instances and scheduling state",
	RunE:  runFSMList,
}

// fsmList adapts []adminclient.FSMSnapshot to output.TableRenderer.
type fsmList []adminclient.FSMSnapshot

func (fl fsmList) Headers() []string {
	return []string{"ID", "STATE", "BUSY", "DELETING", "STATE TIMER", "OVERALL TIMER"}
}

func (fl fsmList) Rows() [][]string {
	rows := make([][]string, 0, len(fl))
	for _, f := range fl {
		rows = append(rows, []string{
			f.ID,
			f.StateName,
			cmdutil.BoolToYesNo(f.Busy),
			cmdutil.BoolToYesNo(f.Deleting),
			cmdutil.BoolToYesNo(f.StateTimerArmed),
			cmdutil.BoolToYesNo(f.OverallArmed),
		})
	}
	return rows
}

func runFSMList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	fsms, queueDepth, timerCount, err := client.ListFSMs()
	if err != nil {
		return fmt.Errorf("failed to list FSMs: %w", err)
	}

	if err := cmdutil.PrintOutput(os.Stdout, fsms, len(fsms) == 0, "No FSM instances found.", fsmList(fsms)); err != nil {
		return err
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err == nil && format == output.FormatTable {
		fmt.Printf("\nqueue depth: %s, armed timers: %s\n", strconv.Itoa(queueDepth), strconv.Itoa(timerCount))
	}
	return nil
}
