package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/minionworks/salt-mcp/internal/saltapi"
)

// errorEnvelope is the JSON payload a failed tool call carries back to the
// MCP client.
type errorEnvelope struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// toolError converts a salt-api failure into a tool error result. Errors
// without a salt-api kind report kind "error".
func toolError(err error) *mcp.CallToolResult {
	kind := string(saltapi.KindOf(err))
	if kind == "" {
		kind = "error"
	}
	return mcp.NewToolResultError(string(mustMarshal(errorEnvelope{Kind: kind, Message: err.Error()})))
}

// stringArg returns the named string argument, or fallback when the argument
// is absent, not a string, or blank.
func stringArg(args map[string]any, key, fallback string) string {
	value, _ := args[key].(string)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// stringListArg coerces the named argument into a string slice. JSON arrays
// arrive as []any; anything else is rejected.
func stringListArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must contain only strings, got %T", key, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
