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

var handlesCmd = &cobra.Command{
	Use:   "handles",
	Short: "Entity handle table management",
	Long: `Inspect and manage corectld's entity handle table.

Examples:
  # List every live handle
  corectl handles list

  # Delete a handle (prompts for confirmation)
  corectl handles delete 12345`,
}

func init() {
	handlesCmd.AddCommand(handlesListCmd)
	handlesCmd.AddCommand(handlesDeleteCmd)
}

var handlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live handle table entries",
	RunE:  runHandlesList,
}

// handleList adapts []adminclient.HandleSnapshot to output.TableRenderer.
type handleList []adminclient.HandleSnapshot

func (hl handleList) Headers() []string {
	return []string{"HANDLE", "PINS", "REFS", "FLAGS"}
}

func (hl handleList) Rows() [][]string {
	rows := make([][]string, 0, len(hl))
	for _, h := range hl {
		rows = append(rows, []string{
			strconv.Itoa(int(h.Hdl)),
			strconv.Itoa(int(h.PinCount)),
			strconv.Itoa(int(h.RefCount)),
			h.Flags,
		})
	}
	return rows
}

func runHandlesList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	handles, err := client.ListHandles()
	if err != nil {
		return fmt.Errorf("failed to list handles: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, handles, len(handles) == 0, "No handles found.", handleList(handles))
}

var handlesDeleteForce bool

var handlesDeleteCmd = &cobra.Command{
	Use:   "delete <handle>",
	Short: "Delete a handle table entry",
	Long: `Run the pin-for-delete sequence against one handle.

If the handle is still referenced elsewhere, the daemon reports a
conflict rather than blocking; the delete stays deferred until that
reference is dropped, and re-running the command meanwhile reports the
handle as already deleted.

This action is irreversible. You will be prompted for confirmation
unless --force is specified.`,
	Args: cobra.ExactArgs(1),
	RunE: runHandlesDelete,
}

func init() {
	handlesDeleteCmd.Flags().BoolVarP(&handlesDeleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runHandlesDelete(cmd *cobra.Command, args []string) error {
	hdl, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid handle %q: %w", args[0], err)
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("handle", args[0], handlesDeleteForce, func() error {
		if err := client.DeleteHandle(int32(hdl)); err != nil {
			return fmt.Errorf("failed to delete handle: %w", err)
		}
		return nil
	})
}

var _ output.TableRenderer = handleList(nil)
