package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// GrainsService fetches the grains reported by a single minion.
type GrainsService interface {
	Grains(ctx context.Context, minionID string) (map[string]any, error)
}

type GetMinionInfoHandler struct {
	Service GrainsService
}

func (h *GetMinionInfoHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minionID := stringArg(req.GetArguments(), "minion_id", "")
	if minionID == "" {
		return mcp.NewToolResultError("minion_id parameter is required"), nil
	}
	grains, err := h.Service.Grains(ctx, minionID)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(mustMarshal(grains))), nil
}
