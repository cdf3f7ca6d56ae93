package toolserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(Backends{}, log.New(io.Discard), "1.2.3")
}

func TestInitialize(t *testing.T) {
	s := testServer(t)
	resp := s.HandleRequest(context.Background(), Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	if resp.Error != nil {
		t.Fatalf("error = %v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != serverName || info["version"] != "1.2.3" {
		t.Errorf("serverInfo = %v", info)
	}
}

func TestToolsList(t *testing.T) {
	s := testServer(t)
	resp := s.HandleRequest(context.Background(), Request{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	if resp.Error != nil {
		t.Fatalf("error = %v", resp.Error)
	}

	tools := resp.Result.(map[string]any)["tools"].([]map[string]any)
	want := []string{
		"search_parts", "get_part", "list_categories", "get_subcategories",
		"search_mouser", "search_digikey", "get_part_pinout",
		"catalog_lookup", "catalog_batch_lookup", "get_version",
	}
	if len(tools) != len(want) {
		t.Fatalf("tools = %d, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i]["name"] != name {
			t.Errorf("tools[%d] = %v, want %s", i, tools[i]["name"], name)
		}
		if tools[i]["inputSchema"] == nil {
			t.Errorf("tool %s has no input schema", name)
		}
	}
}

func callRequest(t *testing.T, name string, args map[string]any) Request {
	t.Helper()
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	return Request{JSONRPC: "2.0", ID: 3, Method: "tools/call", Params: params}
}

func TestGetVersionTool(t *testing.T) {
	s := testServer(t)
	resp := s.HandleRequest(context.Background(), callRequest(t, "get_version", nil))
	if resp.Error != nil {
		t.Fatalf("error = %v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	structured := result["structuredContent"].(map[string]any)
	if structured["version"] != "1.2.3" || structured["status"] != "healthy" {
		t.Errorf("structuredContent = %v", structured)
	}
	content := result["content"].([]map[string]any)
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Errorf("content = %v", content)
	}
	if !strings.Contains(content[0]["text"].(string), "1.2.3") {
		t.Errorf("text block = %v", content[0]["text"])
	}
}

func TestUnknownMethod(t *testing.T) {
	s := testServer(t)
	resp := s.HandleRequest(context.Background(), Request{JSONRPC: "2.0", ID: 4, Method: "resources/list"})
	if resp.Error == nil || resp.Error.Code != rpcMethodNotFound {
		t.Fatalf("error = %v, want method-not-found", resp.Error)
	}
}

func TestUnknownTool(t *testing.T) {
	s := testServer(t)
	resp := s.HandleRequest(context.Background(), callRequest(t, "explode", nil))
	if resp.Error == nil || resp.Error.Code != rpcToolNotFound {
		t.Fatalf("error = %v, want tool-not-found", resp.Error)
	}
}

func TestUnconfiguredBackend(t *testing.T) {
	s := testServer(t)
	resp := s.HandleRequest(context.Background(), callRequest(t, "search_mouser", map[string]any{"query": "LM358"}))
	if resp.Error == nil || resp.Error.Code != rpcToolExecFailed {
		t.Fatalf("error = %v, want tool-exec-failed for missing backend", resp.Error)
	}
}

func TestCatalogLookupRequiresIdentifier(t *testing.T) {
	s := testServer(t)
	// A nil catalog reports unsupported before argument validation.
	resp := s.HandleRequest(context.Background(), callRequest(t, "catalog_lookup", nil))
	if resp.Error == nil {
		t.Fatal("expected error for unconfigured catalog")
	}
}

func TestServeStdio(t *testing.T) {
	s := testServer(t)

	var in bytes.Buffer
	lines := []map[string]any{
		{"jsonrpc": "2.0", "id": 1, "method": "initialize"},
		{"jsonrpc": "2.0", "method": "notifications/initialized"},
		{"jsonrpc": "2.0", "id": 2, "method": "tools/list"},
	}
	enc := json.NewEncoder(&in)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	if err := s.ServeStdio(context.Background(), &in, &out); err != nil {
		t.Fatalf("ServeStdio() = %v", err)
	}

	// The notification gets no reply, so exactly two responses.
	dec := json.NewDecoder(&out)
	var responses []Response
	for dec.More() {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			t.Fatal(err)
		}
		responses = append(responses, resp)
	}
	if len(responses) != 2 {
		t.Fatalf("responses = %d, want 2", len(responses))
	}
	if responses[0].Error != nil || responses[1].Error != nil {
		t.Errorf("unexpected errors: %v, %v", responses[0].Error, responses[1].Error)
	}
}

func TestServeStdioParseError(t *testing.T) {
	s := testServer(t)
	in := strings.NewReader("this is not json\n")
	var out bytes.Buffer
	if err := s.ServeStdio(context.Background(), in, &out); err != nil {
		t.Fatalf("ServeStdio() = %v", err)
	}
	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != rpcParseError {
		t.Errorf("error = %v, want parse error", resp.Error)
	}
}
