package commands

import (
	"github.com/spf13/cobra"

	"UltraCampScraper/internal/app"
)

func init() {
	rootCmd.AddCommand(gridCmd)
}

var gridCmd = &cobra.Command{
	Use:   "grid <path/to/enrichment.yaml>",
	Short: "Prints a YAML export as a weekly Monday to Friday timetable.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RenderGrid(cmd.OutOrStdout(), args[0])
	},
}
