// Package mcpserver exposes the Execution Engine's closed tool set
// (navigate_to, click_element, input_text, api_call, extract_data,
// human_escalation) as an MCP server using github.com/mark3labs/mcp-go,
// so an external LLM agent or operator tool can drive the same tool catalog
// over the Model Context Protocol instead of only through the planner's
// internal dispatch.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// Dispatcher executes a single tool call and returns its raw output,
// satisfied by internal/execution.Engine's dispatch surface. Defined
// locally (rather than importing internal/execution) to keep this package
// a thin protocol adapter instead of coupling it to the planner's types.
type Dispatcher interface {
	Dispatch(ctx context.Context, tool model.ToolName, params map[string]any) (any, error)
}

var toolCatalog = []struct {
	name model.ToolName
	desc string
}{
	{model.ToolNavigateTo, "Navigate the controlled browser to a URL."},
	{model.ToolClickElement, "Click an element resolved by selector strategy."},
	{model.ToolInputText, "Type text into an element resolved by selector strategy."},
	{model.ToolAPICall, "Perform an HTTP request against an upstream API."},
	{model.ToolExtractData, "Extract text/data from an element resolved by selector strategy."},
	{model.ToolHumanEscalation, "Escalate the current workflow to a human operator."},
}

// New builds an MCP server exposing every tool in model's closed set,
// delegating each call to disp.
func New(name, version string, disp Dispatcher) *server.MCPServer {
	s := server.NewMCPServer(name, version)
	for _, t := range toolCatalog {
		s.AddTool(mcp.NewTool(string(t.name), mcp.WithDescription(t.desc)), handlerFor(t.name, disp))
	}
	return s
}

// handlerFor builds the mcp-go tool handler for a single tool, factored out
// of New so it can be exercised directly in tests without a live MCP
// transport.
func handlerFor(tool model.ToolName, disp Dispatcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		output, err := disp.Dispatch(ctx, tool, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		raw, err := json.Marshal(output)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("mcpserver: marshal output: %v", err)), nil
		}
		return mcp.NewToolResultText(string(raw)), nil
	}
}

// ServeStdio runs the MCP server over stdio, for attaching an external
// agent (e.g. a CLI-launched LLM client) directly to this process.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
