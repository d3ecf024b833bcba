// Command ghostctl is an operator CLI for the approval surface: approve,
// reject, pause, activate or archive a Ghost against a running
// ghost-server, either non-interactively via flags or interactively via a
// huh form. It is a thin HTTP client talking to the server rather than
// touching the store directly.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	token      string
)

func main() {
	root := &cobra.Command{
		Use:   "ghostctl",
		Short: "Operator CLI for the Ghost approval workflow",
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8787", "ghost-server base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("GHOST_BEARER_TOKEN"), "bearer token (default: $GHOST_BEARER_TOKEN)")

	root.AddCommand(approveCmd("approve"))
	root.AddCommand(approveCmd("reject"))
	root.AddCommand(approveCmd("pause"))
	root.AddCommand(approveCmd("activate"))
	root.AddCommand(approveCmd("archive"))
	root.AddCommand(reviewCmd())
	root.AddCommand(promoteCmd())
	root.AddCommand(execCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type approveGhostRequest struct {
	GhostID      string `json:"ghost_id"`
	OrgID        string `json:"org_id"`
	Action       string `json:"action"`
	DecisionNote string `json:"decision_note,omitempty"`
	ApprovedBy   string `json:"approved_by,omitempty"`
}

func approveCmd(action string) *cobra.Command {
	var orgID, decisionNote, approvedBy string
	cmd := &cobra.Command{
		Use:   action + " <ghost-id>",
		Short: "Apply the \"" + action + "\" approval action to a Ghost",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := postApproval(approveGhostRequest{
				GhostID:      args[0],
				OrgID:        orgID,
				Action:       action,
				DecisionNote: decisionNote,
				ApprovedBy:   approvedBy,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			printEnvelope(resp)
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id (required)")
	cmd.Flags().StringVar(&decisionNote, "note", "", "decision note")
	cmd.Flags().StringVar(&approvedBy, "by", "", "operator identity recorded on the decision")
	cmd.MarkFlagRequired("org")
	return cmd
}

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Interactively approve, reject, pause, activate or archive a Ghost",
		Run: func(cmd *cobra.Command, args []string) {
			var req approveGhostRequest
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Title("Org ID").Value(&req.OrgID),
					huh.NewInput().Title("Ghost ID").Value(&req.GhostID),
					huh.NewSelect[string]().
						Title("Action").
						Options(
							huh.NewOption("approve", "approve"),
							huh.NewOption("reject", "reject"),
							huh.NewOption("pause", "pause"),
							huh.NewOption("activate", "activate"),
							huh.NewOption("archive", "archive"),
						).
						Value(&req.Action),
					huh.NewInput().Title("Decision note (optional)").Value(&req.DecisionNote),
					huh.NewInput().Title("Approved by (optional)").Value(&req.ApprovedBy),
				),
			)
			if err := form.Run(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			resp, err := postApproval(req)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			printEnvelope(resp)
		},
	}
}

func postApproval(req approveGhostRequest) (map[string]any, error) {
	return postJSON("/approve-ghost", req)
}

func postJSON(path string, body any) (map[string]any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, serverAddr+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w (body=%s)", err, raw)
	}
	return parsed, nil
}

func printEnvelope(env map[string]any) {
	pretty, _ := json.MarshalIndent(env, "", "  ")
	fmt.Println(string(pretty))
}
