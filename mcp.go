package regard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/regard/kit"
	"github.com/hazyhaar/regard/target"
)

// RegisterMCP registers capture, compare and list tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerCaptureTool(srv)
	e.registerCompareTool(srv)
	e.registerListTool(srv)
}

// instrument wraps a tool endpoint with the standard middleware stack.
func (e *Engine) instrument(tool string, ep kit.Endpoint) kit.Endpoint {
	return kit.Chain(e.toolLog(tool))(ep)
}

// toolLog assigns a request ID when the transport did not and logs every
// call with its duration.
func (e *Engine) toolLog(tool string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			id := kit.GetRequestID(ctx)
			if id == "" {
				id = kit.NewRequestID()
				ctx = kit.WithRequestID(ctx, id)
			}
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				e.log.Warn("tool call failed", "tool", tool, "request_id", id,
					"transport", kit.GetTransport(ctx), "duration", time.Since(start), "error", err)
				return nil, err
			}
			e.log.Info("tool call", "tool", tool, "request_id", id,
				"transport", kit.GetTransport(ctx), "duration", time.Since(start))
			return resp, nil
		}
	}
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// shotReq is the shared argument shape of the capture and compare tools.
// Exactly one of page, selector or class picks the target.
type shotReq struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Page     bool   `json:"page"`
	Selector string `json:"selector"`
	Class    string `json:"class"`
}

func (r *shotReq) request() (Request, error) {
	req := Request{URL: r.URL, Name: r.Name}
	picked := 0
	if r.Page {
		req.Target = target.Page()
		picked++
	}
	if r.Selector != "" {
		req.Target = target.BySelector(r.Selector)
		picked++
	}
	if r.Class != "" {
		req.Target = target.ByClass(r.Class)
		picked++
	}
	if picked != 1 {
		return Request{}, fmt.Errorf("exactly one of page, selector or class must be set")
	}
	return req, nil
}

func shotProperties() map[string]any {
	return map[string]any{
		"url":      map[string]any{"type": "string", "description": "Page URL; defaults to the configured target URL"},
		"name":     map[string]any{"type": "string", "description": "Logical baseline name"},
		"page":     map[string]any{"type": "boolean", "description": "Capture the full page"},
		"selector": map[string]any{"type": "string", "description": "CSS selector of the element to capture"},
		"class":    map[string]any{"type": "string", "description": "Class name of the element to capture"},
	}
}

func (e *Engine) registerCaptureTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "regard_capture",
		Description: "Capture a baseline screenshot of a page or element and store it under a logical name.",
		InputSchema: inputSchema(shotProperties(), []string{"name"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return e.Capture(ctx, req.(Request))
	}

	kit.RegisterMCPTool(srv, tool, e.instrument("regard_capture", endpoint), decodeShot)
}

func (e *Engine) registerCompareTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "regard_compare",
		Description: "Capture a page or element and compare it against the stored baseline; reports a similarity score and diff artifact paths.",
		InputSchema: inputSchema(shotProperties(), []string{"name"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return e.Compare(ctx, req.(Request))
	}

	kit.RegisterMCPTool(srv, tool, e.instrument("regard_compare", endpoint), decodeShot)
}

func (e *Engine) registerListTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "regard_list",
		Description: "List all stored baselines with their capture metadata.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		entries, err := e.store.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"baselines": entries}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, e.instrument("regard_list", endpoint), decode)
}

func decodeShot(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r shotReq
	if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
		return nil, err
	}
	parsed, err := r.request()
	if err != nil {
		return nil, err
	}
	return &kit.MCPDecodeResult{Request: parsed}, nil
}
