package tools

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/minionworks/salt-mcp/internal/saltapi"
)

// fakeService implements every tool service interface.
type fakeService struct {
	status    map[string]bool
	reachable map[string]bool
	grains    map[string]any
	results   map[string]any
	err       error

	calls       int
	gotTarget   string
	gotMinionID string
	gotFunction string
	gotArgs     []string
}

func (f *fakeService) MinionStatus(ctx context.Context) (map[string]bool, error) {
	f.calls++
	return f.status, f.err
}

func (f *fakeService) Ping(ctx context.Context, target string) (map[string]bool, error) {
	f.calls++
	f.gotTarget = target
	return f.reachable, f.err
}

func (f *fakeService) Grains(ctx context.Context, minionID string) (map[string]any, error) {
	f.calls++
	f.gotMinionID = minionID
	return f.grains, f.err
}

func (f *fakeService) Execute(ctx context.Context, function, target string, args []string) (map[string]any, error) {
	f.calls++
	f.gotFunction = function
	f.gotTarget = target
	f.gotArgs = args
	return f.results, f.err
}

func request(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("result carries no content")
	}
	tc, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("result content is not text")
	}
	return tc.Text
}

func decodeEnvelope(t *testing.T, res *mcp.CallToolResult) errorEnvelope {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected an error result")
	}
	var envelope errorEnvelope
	if err := json.Unmarshal([]byte(resultText(t, res)), &envelope); err != nil {
		t.Fatalf("error payload is not a JSON envelope: %v", err)
	}
	return envelope
}

func TestListAllMinionsReturnsStatusMap(t *testing.T) {
	svc := &fakeService{status: map[string]bool{"web01": true, "cache01": false}}
	handler := &ListAllMinionsHandler{Service: svc}

	res, err := handler.ToolAdapter(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	var got map[string]bool
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !reflect.DeepEqual(got, svc.status) {
		t.Fatalf("unexpected result %v", got)
	}
}

func TestListAllMinionsWrapsFailures(t *testing.T) {
	svc := &fakeService{err: &saltapi.Error{Kind: saltapi.KindTransport, Message: "connection refused"}}
	handler := &ListAllMinionsHandler{Service: svc}

	res, err := handler.ToolAdapter(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("tool failures must not become protocol errors, got %v", err)
	}
	envelope := decodeEnvelope(t, res)
	if envelope.Kind != "transport" {
		t.Fatalf("unexpected kind %q", envelope.Kind)
	}
	if envelope.Message != "connection refused" {
		t.Fatalf("unexpected message %q", envelope.Message)
	}
}

func TestPingMinionsDefaultsTarget(t *testing.T) {
	svc := &fakeService{reachable: map[string]bool{}}
	handler := &PingMinionsHandler{Service: svc}

	if _, err := handler.ToolAdapter(context.Background(), request(nil)); err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	if svc.gotTarget != "*" {
		t.Fatalf("expected default target '*', got %q", svc.gotTarget)
	}

	if _, err := handler.ToolAdapter(context.Background(), request(map[string]any{"target": "web*"})); err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	if svc.gotTarget != "web*" {
		t.Fatalf("expected explicit target forwarded, got %q", svc.gotTarget)
	}
}

func TestGetMinionInfoRequiresMinionID(t *testing.T) {
	svc := &fakeService{}
	handler := &GetMinionInfoHandler{Service: svc}

	res, err := handler.ToolAdapter(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected an error result for a missing minion_id")
	}
	if svc.calls != 0 {
		t.Fatalf("expected no service call, got %d", svc.calls)
	}
}

func TestGetMinionInfoNotFoundEnvelope(t *testing.T) {
	svc := &fakeService{err: &saltapi.Error{Kind: saltapi.KindNotFound, Message: `minion "ghost" not found or not responding`}}
	handler := &GetMinionInfoHandler{Service: svc}

	res, err := handler.ToolAdapter(context.Background(), request(map[string]any{"minion_id": "ghost"}))
	if err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	if envelope := decodeEnvelope(t, res); envelope.Kind != "not_found" {
		t.Fatalf("unexpected kind %q", envelope.Kind)
	}
	if svc.gotMinionID != "ghost" {
		t.Fatalf("expected minion id forwarded, got %q", svc.gotMinionID)
	}
}

func TestExecuteSaltCommandValidation(t *testing.T) {
	svc := &fakeService{}
	handler := &ExecuteSaltCommandHandler{Service: svc}

	res, err := handler.ToolAdapter(context.Background(), request(map[string]any{"target": "*"}))
	if err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected an error result for a missing function")
	}

	res, err = handler.ToolAdapter(context.Background(), request(map[string]any{
		"function": "cmd.run",
		"args":     []any{"uptime", 42},
	}))
	if err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected an error result for non-string args")
	}
	if svc.calls != 0 {
		t.Fatalf("expected no service call on validation failure, got %d", svc.calls)
	}
}

func TestExecuteSaltCommandForwardsArguments(t *testing.T) {
	svc := &fakeService{results: map[string]any{"web01": "up 3 days"}}
	handler := &ExecuteSaltCommandHandler{Service: svc}

	res, err := handler.ToolAdapter(context.Background(), request(map[string]any{
		"function": "cmd.run",
		"target":   "web*",
		"args":     []any{"uptime -p"},
	}))
	if err != nil {
		t.Fatalf("tool adapter: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if svc.gotFunction != "cmd.run" || svc.gotTarget != "web*" {
		t.Fatalf("unexpected call %q on %q", svc.gotFunction, svc.gotTarget)
	}
	if !reflect.DeepEqual(svc.gotArgs, []string{"uptime -p"}) {
		t.Fatalf("unexpected args %v", svc.gotArgs)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got["web01"] != "up 3 days" {
		t.Fatalf("unexpected result %v", got)
	}
}
