package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type promotePatternRequest struct {
	OrgID       string `json:"orgId"`
	PatternID   string `json:"patternId"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

func promoteCmd() *cobra.Command {
	var orgID, requestedBy string
	cmd := &cobra.Command{
		Use:   "promote <pattern-id>",
		Short: "Promote a detected pattern into a pending Ghost awaiting approval",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := postJSON("/promote-pattern", promotePatternRequest{
				OrgID:       orgID,
				PatternID:   args[0],
				RequestedBy: requestedBy,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			printEnvelope(resp)
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id (required)")
	cmd.Flags().StringVar(&requestedBy, "by", "", "operator identity recorded on the request")
	cmd.MarkFlagRequired("org")
	return cmd
}
