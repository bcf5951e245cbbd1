package mcp

import (
	"context"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverVersion = "1.0.0"

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP *server.MCPServer
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"saltapi",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	// Register tools with their proper schemas using mcp-go builder pattern
	toolDefinitions := map[string]mcp.Tool{
		"list_all_minions": mcp.NewTool("list_all_minions",
			mcp.WithDescription("List all minions registered with the Salt master and whether each one is currently reachable."),
		),
		"ping_minions": mcp.NewTool("ping_minions",
			mcp.WithDescription("Check connectivity to Salt minions with test.ping. Returns a map of minion id to reachability."),
			mcp.WithString("target",
				mcp.Description("Minion target expression, e.g. '*' or 'web*' (default: '*')"),
				mcp.DefaultString("*"),
			),
		),
		"get_minion_info": mcp.NewTool("get_minion_info",
			mcp.WithDescription("Fetch the grains (static system facts such as OS, CPU and network) reported by one Salt minion."),
			mcp.WithString("minion_id",
				mcp.Required(),
				mcp.Description("Exact minion id, e.g. 'web01.example.com'"),
			),
		),
		"execute_salt_command": mcp.NewTool("execute_salt_command",
			mcp.WithDescription("Execute an arbitrary Salt execution module function on the targeted minions. Authorization is enforced by salt-api's eauth/ACL configuration, not by this server."),
			mcp.WithString("function",
				mcp.Required(),
				mcp.Description("Execution module function, e.g. 'cmd.run' or 'service.status'"),
			),
			mcp.WithString("target",
				mcp.Description("Minion target expression (default: '*')"),
				mcp.DefaultString("*"),
			),
			mcp.WithArray("args",
				mcp.Description("Positional arguments passed to the function"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
	}

	for name, adapter := range cfg.ToolAdapters {
		tool, ok := toolDefinitions[name]
		if !ok {
			continue
		}
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return adapter.ToolAdapter(ctx, req)
		})
	}

	return &Server{MCP: mcpServer}
}

// ServeStdio runs the server over stdin/stdout until ctx is cancelled or
// stdin closes. Transport diagnostics go to stderr; stdout carries only the
// JSON-RPC stream.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.MCP)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
