package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/stackwm/internal/ipc"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show screens, workspaces and clients of the running window manager",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := ipc.NewClient().Status()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if statusJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}
		return writeStatusTable(out, status)
	},
}

var actionCmd = &cobra.Command{
	Use:   "action <name>",
	Short: "Run a named action (see 'stackwm actions')",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		// "spawn firefox --new-window" arrives as several arguments.
		return ipc.NewClient().RunAction(strings.Join(args, " "))
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the action names the window manager accepts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		names, err := ipc.NewClient().ListActions()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the running window manager to reload its config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ipc.NewClient().Reload(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print JSON even on a terminal")
	rootCmd.AddCommand(statusCmd, actionCmd, actionsCmd, reloadCmd)
}

func writeStatusTable(w io.Writer, st *ipc.StatusData) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "uptime:\t%ds\n", st.UptimeSeconds)
	if st.FocusedWindow != 0 {
		fmt.Fprintf(tw, "focused:\t%#x\n", st.FocusedWindow)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "SCREEN\tGEOMETRY\tWORKSPACE")
	for _, s := range st.Screens {
		mark := ""
		if s.Index == st.FocusedScreen {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%dx%d+%d+%d\t%s\n", s.Index, mark,
			s.Rect.Width, s.Rect.Height, s.Rect.X, s.Rect.Y, s.Workspace)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "WORKSPACE\tLAYOUT\tCLIENTS")
	for _, ws := range st.Workspaces {
		name := ws.Name
		if ws.Visible {
			name += "*"
		}
		clients := make([]string, 0, len(ws.Clients))
		for _, c := range ws.Clients {
			label := fmt.Sprintf("%#x", c.ID)
			if c.Class != "" {
				label += "(" + c.Class + ")"
			}
			if c.Focused {
				label = "[" + label + "]"
			}
			if c.Floating {
				label += "~"
			}
			clients = append(clients, label)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, ws.Layout, strings.Join(clients, " "))
	}
	return tw.Flush()
}
