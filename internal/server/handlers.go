package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/uisync/internal/driver"
	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/output"
	"github.com/mj1618/uisync/internal/render"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// toText serializes a result to YAML for MCP response.
func toText(v interface{}) string {
	var b strings.Builder
	if err := output.FprintYAML(&b, v); err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return b.String()
}

// waitHandler runs one wait under the driver lock and reports it as a
// WaitResult. Waits can scroll, so the cache is always invalidated.
func (s *Server) waitHandler(action, match string, fn func() (bool, *model.Node, error)) (*mcp.CallToolResult, error) {
	s.driverMu.Lock()
	defer s.driverMu.Unlock()
	defer s.cache.InvalidateAll()

	start := s.driver.Now()
	ok, n, err := fn()
	result := output.WaitResult{
		OK:      ok && err == nil,
		Action:  action,
		Elapsed: output.Elapsed(s.driver.Now().Sub(start)),
		Match:   match,
		Node:    output.FlatPtr(n),
	}
	switch {
	case err != nil:
		result.Error = err.Error()
	case !ok:
		result.TimedOut = true
		result.Error = fmt.Sprintf("timed out waiting for %s", match)
	}
	s.logger.Debug("wait finished",
		zap.String("action", action),
		zap.String("match", match),
		zap.Bool("ok", result.OK),
		zap.String("elapsed", result.Elapsed),
	)
	if !result.OK {
		return mcp.NewToolResultError(toText(result)), nil
	}
	return mcp.NewToolResultText(toText(result)), nil
}

func (s *Server) handleCurrentScreen(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.driverMu.Lock()
	defer s.driverMu.Unlock()

	screen, ok := s.driver.CurrentScreen()
	result := output.ScreenResult{Found: ok}
	if ok {
		result.Screen = &screen
		result.Overlay = s.driver.IsOverlayOpen()
	}
	return mcp.NewToolResultText(toText(result)), nil
}

func (s *Server) handleScreens(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.driverMu.Lock()
	defer s.driverMu.Unlock()

	return mcp.NewToolResultText(toText(output.ScreensResult{Screens: s.driver.Screens()})), nil
}

func (s *Server) handleNodes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	visible := boolParam(params, "visible", true)
	typ := stringParam(params, "type", "")
	text := stringParam(params, "text", "")

	s.driverMu.Lock()
	defer s.driverMu.Unlock()

	snap := s.cache.AllNodes(s.driver.AllNodes, visible)
	nodes := snap.Nodes
	if typ != "" {
		nodes = model.FilterByType(nodes, model.ExpandTypes([]string{typ}))
	}
	if text != "" {
		nodes = model.FilterByText(nodes, text)
	}
	snap.Nodes = nodes

	screen, _ := s.driver.PeekScreen()
	return mcp.NewToolResultText(toText(output.NewNodesResult(snap, screen.ID))), nil
}

func (s *Server) handleFind(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	q := driver.NodeQuery{
		Type:        stringParam(params, "type", ""),
		Index:       intParam(params, "index", 0),
		Pattern:     stringParam(params, "pattern", ""),
		ID:          stringParam(params, "id", ""),
		Ref:         stringParam(params, "ref", ""),
		Timeout:     durationParam(params, "timeout_ms"),
		Scroll:      boolPtrParam(params, "scroll"),
		OnlyVisible: boolParam(params, "visible", false),
		Shown:       boolParam(params, "shown", false),
	}
	if q.Type == "" && q.Pattern == "" && q.ID == "" && q.Ref == "" {
		return mcp.NewToolResultError("one of ref, id, pattern or type is required"), nil
	}

	s.driverMu.Lock()
	defer s.driverMu.Unlock()
	defer s.cache.InvalidateAll()

	start := s.driver.Now()
	n := s.driver.FindNode(q)
	result := output.FindResult{
		OK:      n != nil,
		Query:   describeQuery(q),
		Elapsed: output.Elapsed(s.driver.Now().Sub(start)),
		Node:    output.FlatPtr(n),
	}
	if n == nil {
		return mcp.NewToolResultError(toText(result)), nil
	}
	return mcp.NewToolResultText(toText(result)), nil
}

// describeQuery renders the selecting parts of q as key=value pairs.
func describeQuery(q driver.NodeQuery) string {
	var parts []string
	if q.Ref != "" {
		parts = append(parts, "ref="+q.Ref)
	}
	if q.ID != "" {
		parts = append(parts, "id="+q.ID)
	}
	if q.Pattern != "" {
		parts = append(parts, "pattern="+q.Pattern)
	}
	if q.Type != "" {
		parts = append(parts, "type="+q.Type)
	}
	if q.Index > 0 {
		parts = append(parts, fmt.Sprintf("index=%d", q.Index))
	}
	return strings.Join(parts, " ")
}

func (s *Server) handleWaitText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	q := driver.TextQuery{
		Pattern:     stringParam(params, "pattern", ""),
		Type:        stringParam(params, "type", ""),
		Expected:    intParam(params, "expected", 1),
		Timeout:     durationParam(params, "timeout_ms"),
		Scroll:      boolPtrParam(params, "scroll"),
		OnlyVisible: boolParam(params, "visible", false),
		HardStop:    boolParam(params, "hard_stop", false),
	}
	if q.Pattern == "" {
		return mcp.NewToolResultError("pattern parameter is required"), nil
	}
	return s.waitHandler("wait_text", "text "+q.Pattern, func() (bool, *model.Node, error) {
		n := s.driver.WaitForText(q)
		return n != nil, n, nil
	})
}

func (s *Server) handleWaitScreen(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringParam(params, "name", "")
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	timeout := durationParam(params, "timeout_ms")
	return s.waitHandler("wait_screen", "screen "+name, func() (bool, *model.Node, error) {
		return s.driver.WaitForScreen(name, timeout), nil, nil
	})
}

func (s *Server) handleWaitNode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	typ := stringParam(params, "type", "")
	if typ == "" {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	index := intParam(params, "index", 0)
	timeout := durationParam(params, "timeout_ms")
	scroll := boolParam(params, "scroll", s.driver.Config().Scroll)
	match := fmt.Sprintf("node %s[%d]", typ, index)
	return s.waitHandler("wait_node", match, func() (bool, *model.Node, error) {
		n := s.driver.WaitForNode(typ, index, timeout, scroll)
		return n != nil, n, nil
	})
}

func (s *Server) handleWaitCondition(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	expression := stringParam(params, "expression", "")
	timeout := durationParam(params, "timeout_ms")
	return s.waitHandler("wait_condition", expression, func() (bool, *model.Node, error) {
		ok, err := s.driver.WaitForExpression(expression, timeout)
		return ok, nil, err
	})
}

func (s *Server) handleWaitOverlay(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	open := boolParam(params, "open", true)
	timeout := durationParam(params, "timeout_ms")
	match := "overlay open"
	if !open {
		match = "overlay closed"
	}
	return s.waitHandler("wait_overlay", match, func() (bool, *model.Node, error) {
		return s.driver.WaitForOverlay(open, timeout), nil, nil
	})
}

func (s *Server) handlePopScreen(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.driverMu.Lock()
	defer s.driverMu.Unlock()
	defer s.cache.InvalidateAll()

	screen, ok := s.driver.PopScreen()
	if !ok {
		return mcp.NewToolResultError("screen stack is empty"), nil
	}
	return mcp.NewToolResultText(toText(output.ScreenResult{Found: true, Screen: &screen})), nil
}

func (s *Server) handleRender(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	scale := floatParam(params, "scale", 0.5)
	mode, err := render.ParseLabelMode(stringParam(params, "labels", "ids"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.driverMu.Lock()
	defer s.driverMu.Unlock()

	img, err := s.driver.Wireframe(scale, mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
				MIMEType: "image/png",
			},
		},
	}, nil
}

func (s *Server) handleDo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	stopOnError := boolParam(params, "stop_on_error", true)

	stepsRaw, ok := params["steps"]
	if !ok {
		return mcp.NewToolResultError("steps parameter is required"), nil
	}
	if _, ok := stepsRaw.([]interface{}); !ok {
		return mcp.NewToolResultError("steps must be an array"), nil
	}
	// Round-trip through YAML so steps decode exactly like the CLI's stdin.
	data, err := yaml.Marshal(stepsRaw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	steps, err := driver.ParseSteps(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.driverMu.Lock()
	defer s.driverMu.Unlock()
	defer s.cache.InvalidateAll()

	result := s.driver.RunSteps(steps, stopOnError)
	if !result.OK {
		return mcp.NewToolResultError(toText(result)), nil
	}
	return mcp.NewToolResultText(toText(result)), nil
}
