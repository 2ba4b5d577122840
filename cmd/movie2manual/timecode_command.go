package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"movie2manual/internal/timecode"
)

func newTimecodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "timecode <value>...",
		Short:       "Print values as HH:MM:SS.mmm timecodes",
		Long:        "Accepts decimal seconds (12.5) and [H:]MM:SS[.fraction] timecodes.",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			type conversion struct {
				Input    string `json:"input"`
				Timecode string `json:"timecode"`
			}
			conversions := make([]conversion, 0, len(args))
			for _, arg := range args {
				tc, err := timecode.Canonicalize(arg)
				if err != nil {
					return err
				}
				conversions = append(conversions, conversion{Input: arg, Timecode: tc})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, conversions)
			}
			out := cmd.OutOrStdout()
			for _, c := range conversions {
				fmt.Fprintln(out, c.Timecode)
			}
			return nil
		},
	}
}
