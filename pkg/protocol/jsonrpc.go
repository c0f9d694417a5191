package protocol

import (
	"encoding/json"
	"fmt"
)

/**
https://modelcontextprotocol.info/specification/draft/basic/lifecycle/
Flow:
	The client starts the server process and sends 'initialize':
	  {"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"client","version":"0.1.0"}},"jsonrpc":"2.0","id":0}
	We answer with our capabilities (tools only) and server info.
	The client sends the 'notifications/initialized' notification, which needs no answer,
	then 'tools/list' to discover the nba_* tools and 'tools/call' to run them.
*/

// MethodType defines the possible JSON-RPC method types
type MethodType string

const (
	MethodInitialize  MethodType = "initialize"
	MethodInitialized MethodType = "initialized"
	MethodToolsList   MethodType = "tools/list"
	MethodToolsCall   MethodType = "tools/call"
	MethodPing        MethodType = "ping"
	MethodShutdown    MethodType = "shutdown"

	// older clients name the tool in the params of a single method
	MethodInvokeTool MethodType = "invoke_tool"
)

// JsonRpcVersion is the JSON-RPC protocol version
const JsonRpcVersion = "2.0"

// JsonRpcRequest represents a JSON-RPC 2.0 request object
type JsonRpcRequest struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`

	// absent for notifications
	ID any `json:"id,omitempty"`
}

// JsonRpcResponse represents a JSON-RPC 2.0 response object.
// Exactly one of Result and Error is set
type JsonRpcResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JsonRpcError   `json:"error,omitempty"`
	ID      any             `json:"id"`
}

// JsonRpcError represents a JSON-RPC 2.0 error object
type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ToolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type InputSchema struct {
	Type                 string                  `json:"type"`
	Properties           map[string]ToolProperty `json:"properties,omitempty"`
	Required             []string                `json:"required"`
	AdditionalProperties bool                    `json:"additionalProperties"`
}

// Tool is an operation the server exposes to the client
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ToolsResponse represents the response to a tools discovery request
type ToolsResponse struct {
	Tools []Tool `json:"tools"`
}

// Content is one block of a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the body of a tools/call response
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// NewToolResult renders v as indented JSON text content
func NewToolResult(v any) (*ToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return &ToolResult{Content: []Content{{Type: "text", Text: string(b)}}}, nil
}

// Standard error codes defined by the JSON-RPC 2.0 specification
const (
	ErrParse          = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603

	// implementation defined, -32000 to -32099
	ErrToolExecutionFailed = -32000
)

// Error returns a string representation of the error
func (e *JsonRpcError) Error() string {
	return fmt.Sprintf("jsonrpc error: code=%d message=%s", e.Code, e.Message)
}

// NewJsonRpcRequest creates a new JSON-RPC 2.0 request
func NewJsonRpcRequest(method string, params any, id any) (*JsonRpcRequest, error) {
	var paramsJSON json.RawMessage
	if params != nil {
		var err error
		paramsJSON, err = json.Marshal(params)
		if err != nil {
			return nil, err
		}
	}
	return &JsonRpcRequest{
		JsonRPC: JsonRpcVersion,
		Method:  method,
		Params:  paramsJSON,
		ID:      id,
	}, nil
}

// NewJsonRpcErrorResponse creates a new JSON-RPC 2.0 error response
func NewJsonRpcErrorResponse(code int, message string, data any, id any) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Error: &JsonRpcError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}

// ParseJsonRpcRequest parses a JSON-RPC 2.0 request from raw JSON
func ParseJsonRpcRequest(data []byte) (*JsonRpcRequest, error) {
	var req JsonRpcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %s", req.JsonRPC)
	}
	return &req, nil
}

// ParseJsonRpcResponse parses a JSON-RPC 2.0 response from raw JSON
func ParseJsonRpcResponse(data []byte) (*JsonRpcResponse, error) {
	var resp JsonRpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if resp.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %s", resp.JsonRPC)
	}
	return &resp, nil
}

// String returns a JSON string representation of the request
func (r *JsonRpcRequest) String() string {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling request: %v", err)
	}
	return string(bytes)
}
