package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusService reports master-side reachability for every registered minion.
type StatusService interface {
	MinionStatus(ctx context.Context) (map[string]bool, error)
}

type ListAllMinionsHandler struct {
	Service StatusService
}

func (h *ListAllMinionsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.Service.MinionStatus(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(mustMarshal(status))), nil
}
