package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type ghostExecutorRequest struct {
	GhostID    string         `json:"ghostId"`
	OrgID      string         `json:"orgId"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Trigger    string         `json:"trigger,omitempty"`
}

func execCmd() *cobra.Command {
	var orgID, trigger, paramsJSON string
	cmd := &cobra.Command{
		Use:   "exec <ghost-id>",
		Short: "Run an approved Ghost's execution plan against its trigger",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := ghostExecutorRequest{GhostID: args[0], OrgID: orgID, Trigger: trigger}
			if paramsJSON != "" {
				if err := json.Unmarshal([]byte(paramsJSON), &req.Parameters); err != nil {
					fmt.Fprintln(os.Stderr, "invalid --params JSON:", err)
					os.Exit(1)
				}
			}

			resp, err := postJSON("/ghost-executor", req)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			printEnvelope(resp)
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id (required)")
	cmd.Flags().StringVar(&trigger, "trigger", "manual", "trigger label recorded on the execution")
	cmd.Flags().StringVar(&paramsJSON, "params", "", "JSON object passed to the execution plan")
	cmd.MarkFlagRequired("org")
	return cmd
}
