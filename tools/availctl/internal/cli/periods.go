package cli

import (
	"github.com/spf13/cobra"
)

// NewPeriodsCommand creates the periods command.
func NewPeriodsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "Print available ranges with unavailable ranges removed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := LoadRequest(rootOpts.File, cmd.InOrStdin())
			if err != nil {
				return err
			}
			a, loc, err := req.Build()
			if err != nil {
				return err
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Periods(loc, a.Periods())
		},
	}
}
