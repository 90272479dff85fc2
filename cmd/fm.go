package cmd

import (
	"github.com/spf13/cobra"
)

var fmCmd = &cobra.Command{
	Use:   "fm",
	Short: "Start private radio mode immediately.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEngine()
		if err != nil {
			return err
		}
		defer e.shutdown()

		e.player.Subscribe(consoleNotifier{})
		if err := e.player.Initialize(); err != nil {
			return err
		}
		if err := e.player.StartFmMode(nil); err != nil {
			return err
		}
		return repl(e)
	},
}

func init() {
	rootCmd.AddCommand(fmCmd)
}
