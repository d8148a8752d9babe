package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stackwm/internal/ipc"
	"github.com/1broseidon/stackwm/internal/palette"
)

var paletteBackend string

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Pick an action from a rofi or dmenu menu and run it",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		backend, err := palette.NewBackend(paletteBackend)
		if err != nil {
			return err
		}
		client := ipc.NewClient()
		names, err := client.ListActions()
		if err != nil {
			return err
		}
		var status *ipc.StatusData
		if st, err := client.Status(); err == nil {
			status = st
		}

		items := palette.ActionItems(names, nil)
		if status != nil {
			items = palette.ActionItems(names, &status.Status)
		}
		item, err := backend.Show("stackwm", items)
		if errors.Is(err, palette.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		return client.RunAction(item.Action)
	},
}

func init() {
	paletteCmd.Flags().StringVar(&paletteBackend, "backend", "auto", "Menu program: auto, rofi or dmenu")
	rootCmd.AddCommand(paletteCmd)
}
