package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// PingService checks minion connectivity with test.ping.
type PingService interface {
	Ping(ctx context.Context, target string) (map[string]bool, error)
}

type PingMinionsHandler struct {
	Service PingService
}

func (h *PingMinionsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := stringArg(req.GetArguments(), "target", "*")
	reachable, err := h.Service.Ping(ctx, target)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(mustMarshal(reachable))), nil
}
