package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/screenplan/internal/codec"
	"github.com/jmylchreest/screenplan/internal/engine"
)

// listCmd prints every attached display's available modes. It never
// mutates display state.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print information about available display modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := newBackend()
		if err != nil {
			return err
		}
		snap, err := backend.Snapshot()
		if err != nil {
			return err
		}

		out, closeOut, err := openOutput()
		if err != nil {
			return err
		}
		defer closeOut()
		return codec.Encode(format, out, engine.SnapshotModes(snap))
	},
}

func init() {
	listCmd.Flags().StringVarP(&globalOpts.outputPath, "output", "o", "",
		"File to write to instead of standard output")
	rootCmd.AddCommand(listCmd)
}
