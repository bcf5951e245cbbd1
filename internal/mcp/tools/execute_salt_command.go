package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExecService dispatches an arbitrary execution module function to targeted
// minions.
type ExecService interface {
	Execute(ctx context.Context, function, target string, args []string) (map[string]any, error)
}

type ExecuteSaltCommandHandler struct {
	Service ExecService
}

func (h *ExecuteSaltCommandHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := req.GetArguments()
	function := stringArg(arguments, "function", "")
	if function == "" {
		return mcp.NewToolResultError("function parameter is required, e.g. cmd.run or service.status"), nil
	}
	target := stringArg(arguments, "target", "*")
	args, err := stringListArg(arguments, "args")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := h.Service.Execute(ctx, function, target, args)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(mustMarshal(results))), nil
}
