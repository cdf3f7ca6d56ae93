package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/partstack/partstack/pkg/errors"
)

// JSON-RPC 2.0 error codes, plus the MCP tool-specific range.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcInternalError  = -32603
	rpcToolNotFound   = -32001
	rpcToolExecFailed = -32002
)

const protocolVersion = "2024-11-05"

// Request is an incoming JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func errorResponse(id any, code int, message string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

func resultResponse(id any, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// HandleRequest dispatches one JSON-RPC request.
func (s *Server) HandleRequest(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "notifications/initialized", "initialized":
		// Notification, no response body expected; acknowledge anyway
		// for the HTTP transport.
		return resultResponse(req.ID, map[string]any{})
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req.ID, req.Params)
	default:
		return errorResponse(req.ID, rpcMethodNotFound, fmt.Sprintf("method %s not found", req.Method))
	}
}

func (s *Server) handleInitialize(id any) Response {
	return resultResponse(id, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": s.version,
		},
	})
}

func (s *Server) handleToolsList(id any) Response {
	tools := make([]map[string]any, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, map[string]any{
			"name":        t.def.Name,
			"description": t.def.Description,
			"inputSchema": t.def.InputSchema,
		})
	}
	return resultResponse(id, map[string]any{"tools": tools})
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, id any, params json.RawMessage) Response {
	var call toolsCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return errorResponse(id, rpcInvalidParams, err.Error())
	}

	result, err := s.Call(ctx, call.Name, call.Arguments)
	if err != nil {
		return errorResponse(id, rpcErrorCode(err), errors.UserMessage(err))
	}

	// Tool results travel as MCP content blocks with the structured
	// payload duplicated in structuredContent.
	data, merr := json.Marshal(result)
	if merr != nil {
		return errorResponse(id, rpcInternalError, merr.Error())
	}
	return resultResponse(id, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(data)},
		},
		"structuredContent": result,
	})
}

// rpcErrorCode maps domain errors onto the JSON-RPC error space.
func rpcErrorCode(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeToolNotFound):
		return rpcToolNotFound
	case errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidUUID),
		errors.Is(err, errors.ErrCodeInvalidCode),
		errors.Is(err, errors.ErrCodeInvalidFilter),
		errors.Is(err, errors.ErrCodeBatchTooLarge):
		return rpcInvalidParams
	default:
		return rpcToolExecFailed
	}
}
