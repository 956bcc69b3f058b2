package cli

import (
	"errors"
	"strings"

	"github.com/md-rashed-zaman/availability/libs/availability"
	"github.com/spf13/cobra"
)

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	var interval string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Print session start times that fit in the free periods",
		Long: `Print every start time t, stepping by the interval from the start of each
free period, for which t plus the interval still ends inside that period.

The interval is a Go duration ("15m") or a count and unit ("15 minutes").
The --interval flag overrides the request file's interval field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := LoadRequest(rootOpts.File, cmd.InOrStdin())
			if err != nil {
				return err
			}
			text := strings.TrimSpace(interval)
			if text == "" {
				text = strings.TrimSpace(req.Interval)
			}
			if text == "" {
				return errors.New("an interval is required (--interval or the request's interval field)")
			}
			d, err := availability.ParseInterval(text)
			if err != nil {
				return err
			}
			a, loc, err := req.Build()
			if err != nil {
				return err
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Sessions(loc, d, a.Sessions(d))
		},
	}

	cmd.Flags().StringVarP(&interval, "interval", "i", "", `session length, e.g. "15 minutes" or 15m`)

	return cmd
}
