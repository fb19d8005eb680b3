package server

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/uisync/internal/config"
	"github.com/mj1618/uisync/internal/driver"
	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/output"
	"github.com/mj1618/uisync/internal/platform"
	_ "github.com/mj1618/uisync/internal/platform/scene"
	"github.com/mj1618/uisync/internal/sleeper"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

const testScene = `
display: {width: 400, height: 800}
screens:
  - id: main
    type: MainActivity
    root:
      type: DecorView
      bounds: [0, 0, 400, 800]
      children:
        - {id: hello, type: TextView, text: Hello, bounds: [0, 0, 400, 100]}
        - {id: go, type: Button, text: Go, bounds: [0, 100, 400, 100]}
  - id: detail
    type: DetailActivity
    shown_at: 5s
    root:
      type: DecorView
      bounds: [0, 0, 400, 800]
      children:
        - {id: title, type: TextView, text: Details, bounds: [0, 0, 400, 100]}
`

func newTestServer(t *testing.T, ttl time.Duration) *Server {
	t.Helper()
	clock := sleeper.NewFakeClock(time.Unix(1700000000, 0))
	p, err := platform.NewProvider("scene", platform.Options{Data: []byte(testScene), Clock: clock})
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	logger := zaptest.NewLogger(t)
	d, err := driver.New(p, config.Default(),
		driver.WithClock(clock),
		driver.WithoutSampler(),
		driver.WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return New(d, Config{Transport: "stdio", CacheTTL: ttl}, logger)
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("expected text content, got %T", res.Content[0])
	return ""
}

func TestSnapshotCache(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewSnapshotCache(time.Second, func() time.Time { return now })
	reads := 0
	read := func(bool) model.Snapshot {
		reads++
		return model.Snapshot{}
	}

	c.AllNodes(read, true)
	c.AllNodes(read, true)
	if reads != 1 {
		t.Errorf("expected a cached second read, got %d reads", reads)
	}
	c.AllNodes(read, false)
	if reads != 2 || c.Len() != 2 {
		t.Errorf("expected separate entries per visibility, got %d reads and %d entries", reads, c.Len())
	}

	now = now.Add(time.Second)
	c.AllNodes(read, true)
	if reads != 3 {
		t.Errorf("expected expiry after the TTL, got %d reads", reads)
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestSnapshotCache_Disabled(t *testing.T) {
	c := NewSnapshotCache(0, nil)
	reads := 0
	read := func(bool) model.Snapshot {
		reads++
		return model.Snapshot{}
	}
	c.AllNodes(read, true)
	c.AllNodes(read, true)
	if reads != 2 || c.Len() != 0 {
		t.Errorf("expected no caching, got %d reads and %d entries", reads, c.Len())
	}
}

func TestHandleCurrentScreen(t *testing.T) {
	s := newTestServer(t, 0)
	res, err := s.handleCurrentScreen(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}
	var got output.ScreenResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Found || got.Screen.ID != "main" || got.Overlay {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestHandleNodes(t *testing.T) {
	s := newTestServer(t, time.Minute)
	res, err := s.handleNodes(context.Background(), call(map[string]interface{}{"type": "Button"}))
	if err != nil {
		t.Fatal(err)
	}
	var got output.NodesResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 1 || got.Nodes[0].ID != "go" || got.Screen != "main" {
		t.Errorf("unexpected nodes: %+v", got)
	}
	if s.cache.Len() != 1 {
		t.Errorf("expected one cached snapshot, got %d", s.cache.Len())
	}

	res, _ = s.handleNodes(context.Background(), call(map[string]interface{}{"text": "hell"}))
	if text := resultText(t, res); !strings.Contains(text, "id: hello") || strings.Contains(text, "id: go") {
		t.Errorf("expected only hello, got:\n%s", text)
	}
}

func TestHandleFind(t *testing.T) {
	s := newTestServer(t, time.Minute)
	s.handleNodes(context.Background(), call(nil))

	res, err := s.handleFind(context.Background(), call(map[string]interface{}{"pattern": "^G"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("expected a match, got:\n%s", resultText(t, res))
	}
	var got output.FindResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Node == nil || got.Node.ID != "go" || got.Query != "pattern=^G" {
		t.Errorf("unexpected result: %+v", got)
	}
	if s.cache.Len() != 0 {
		t.Error("expected find to invalidate the cache")
	}

	res, _ = s.handleFind(context.Background(), call(nil))
	if !res.IsError {
		t.Error("expected an error without a selector")
	}
}

func TestHandleWaitScreen(t *testing.T) {
	s := newTestServer(t, 0)
	res, _ := s.handleWaitScreen(context.Background(), call(map[string]interface{}{
		"name": "DetailActivity", "timeout_ms": float64(10000),
	}))
	if res.IsError {
		t.Fatalf("expected detail screen, got:\n%s", resultText(t, res))
	}

	res, _ = s.handleWaitScreen(context.Background(), call(map[string]interface{}{
		"name": "Settings", "timeout_ms": float64(1000),
	}))
	var got output.WaitResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !got.TimedOut || got.OK {
		t.Errorf("expected a timeout, got %+v", got)
	}

	res, _ = s.handleWaitScreen(context.Background(), call(nil))
	if !res.IsError {
		t.Error("expected an error without a name")
	}
}

func TestHandleWaitText(t *testing.T) {
	s := newTestServer(t, 0)
	res, _ := s.handleWaitText(context.Background(), call(map[string]interface{}{
		"pattern": "Details", "timeout_ms": float64(10000), "hard_stop": true,
	}))
	var got output.WaitResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if !got.OK || got.Node == nil || got.Node.ID != "title" {
		t.Errorf("expected title, got %+v", got)
	}
}

func TestHandleWaitNodeAndOverlay(t *testing.T) {
	s := newTestServer(t, 0)
	res, _ := s.handleWaitNode(context.Background(), call(map[string]interface{}{"type": "btn"}))
	if res.IsError {
		t.Fatalf("expected button, got:\n%s", resultText(t, res))
	}
	res, _ = s.handleWaitOverlay(context.Background(), call(map[string]interface{}{
		"open": true, "timeout_ms": float64(1000),
	}))
	if !res.IsError {
		t.Error("expected no overlay to open")
	}
}

func TestHandleWaitCondition(t *testing.T) {
	s := newTestServer(t, 0)
	res, _ := s.handleWaitCondition(context.Background(), call(map[string]interface{}{
		"expression": `count("Button") == 1 && !overlay`,
	}))
	if res.IsError {
		t.Fatalf("expected condition to hold, got:\n%s", resultText(t, res))
	}

	res, _ = s.handleWaitCondition(context.Background(), call(map[string]interface{}{
		"expression": "nope.nothing",
	}))
	var got output.WaitResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if !res.IsError || got.Error == "" || got.TimedOut {
		t.Errorf("expected a compile error, got %+v", got)
	}
}

func TestHandlePopScreen(t *testing.T) {
	s := newTestServer(t, 0)
	s.handleWaitScreen(context.Background(), call(map[string]interface{}{"name": "detail"}))

	res, _ := s.handlePopScreen(context.Background(), call(nil))
	if text := resultText(t, res); res.IsError || !strings.Contains(text, "id: detail") {
		t.Errorf("expected detail to be popped, got:\n%s", text)
	}
}

func TestHandleRender(t *testing.T) {
	s := newTestServer(t, 0)
	res, err := s.handleRender(context.Background(), call(map[string]interface{}{"scale": 0.25}))
	if err != nil {
		t.Fatal(err)
	}
	img, ok := res.Content[0].(mcp.ImageContent)
	if !ok {
		t.Fatalf("expected image content, got %T", res.Content[0])
	}
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIMEType != "image/png" || !strings.HasPrefix(string(data), "\x89PNG") {
		t.Error("expected PNG data")
	}

	res, _ = s.handleRender(context.Background(), call(map[string]interface{}{"labels": "colour"}))
	if !res.IsError {
		t.Error("expected an error for an unknown label mode")
	}
}

func TestHandleDo(t *testing.T) {
	s := newTestServer(t, 0)
	res, _ := s.handleDo(context.Background(), call(map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"find": map[string]interface{}{"pattern": "Hello"}},
			map[string]interface{}{"wait_screen": map[string]interface{}{"name": "detail", "timeout": "10s"}},
			map[string]interface{}{"check": `exists("Details")`},
		},
	}))
	var got driver.BatchResult
	if err := yaml.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if res.IsError || !got.OK || got.Completed != 3 {
		t.Errorf("expected all steps to complete, got %+v", got)
	}

	res, _ = s.handleDo(context.Background(), call(map[string]interface{}{"steps": "find"}))
	if !res.IsError {
		t.Error("expected an error for non-array steps")
	}
	res, _ = s.handleDo(context.Background(), call(map[string]interface{}{
		"steps": []interface{}{map[string]interface{}{}},
	}))
	if !res.IsError {
		t.Error("expected an error for an empty step")
	}
}

func TestServe_UnknownTransport(t *testing.T) {
	s := newTestServer(t, 0)
	s.cfg.Transport = "carrier-pigeon"
	if err := s.Serve(); err == nil || !strings.Contains(err.Error(), "unsupported transport") {
		t.Errorf("expected unsupported transport error, got %v", err)
	}
}
