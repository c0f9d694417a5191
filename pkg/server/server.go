package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/protocol"
	"github.com/richard-senior/nbapredict/pkg/tools"
	"github.com/richard-senior/nbapredict/pkg/transport"
)

const (
	serverName    = "nbapredict"
	serverVersion = "1.0.0"
)

// Server represents an MCP server
type Server struct {
	mu        sync.Mutex
	transport transport.Transport
	handlers  map[string]HandlerFunc
	tools     []protocol.Tool

	// held while a request is handled and answered
	inflight sync.Mutex
	stopping bool
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// NewServer creates a server on t with the protocol handlers registered
func NewServer(t transport.Transport) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	return s
}

// NewNBAServer creates a server exposing svc as tools
func NewNBAServer(t transport.Transport, svc tools.NBAService) *Server {
	s := NewServer(t)
	for _, r := range tools.NewNBATools(svc).Registrations() {
		s.RegisterTool(r.Tool, HandlerFunc(r.Handler))
	}
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Tool(nil), s.tools...)
}

// Start processes requests until the client disconnects or a signal arrives
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		s.Shutdown()
		return nil
	}
}

// Shutdown waits for the request being handled, if any, to be answered and
// stops ProcessRequests from handling any more
func (s *Server) Shutdown() {
	s.inflight.Lock()
	defer s.inflight.Unlock()
	s.stopping = true
}

// ProcessRequests serves requests one at a time until the transport reaches EOF
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var malformed *transport.MalformedRequestError
			if errors.As(err, &malformed) {
				resp := protocol.NewJsonRpcErrorResponse(protocol.ErrInvalidRequest, err.Error(), nil, nil)
				if err := s.transport.WriteResponse(resp); err != nil {
					return err
				}
				continue
			}
			return err
		}

		stop, err := s.serve(req)
		if stop || err != nil {
			return err
		}
	}
}

// serve handles and answers one request unless the server is shutting down
func (s *Server) serve(req *protocol.JsonRpcRequest) (bool, error) {
	s.inflight.Lock()
	defer s.inflight.Unlock()
	if s.stopping {
		logger.Info("Shutting down, dropping", req.Method)
		return true, nil
	}

	// nil means no response is required
	resp := s.handleRequest(req)
	if resp == nil {
		return false, nil
	}
	return false, s.transport.WriteResponse(resp)
}

// handleRequest processes a request and returns a response
func (s *Server) handleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)

	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	resp := &protocol.JsonRpcResponse{
		JsonRPC: protocol.JsonRpcVersion,
		ID:      req.ID,
	}

	var handler HandlerFunc
	var params any

	if req.Method == string(protocol.MethodInvokeTool) {
		var invokeParams map[string]any
		if err := json.Unmarshal(req.Params, &invokeParams); err != nil {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrInvalidParams,
				Message: "Invalid parameters for invoke_tool: " + err.Error(),
			}
			return resp
		}
		toolName, ok := invokeParams["name"].(string)
		if !ok {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrInvalidParams,
				Message: "Missing tool name in invoke_tool parameters",
			}
			return resp
		}
		logger.Info("Tool invocation requested for:", toolName)
		handler = s.handler(toolName)
		params = invokeParams["parameters"]
	} else {
		handler = s.handler(req.Method)
		params = req.Params
	}

	if handler == nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
		return resp
	}

	result, err := handler(params)
	if err == nil && result == nil {
		return nil
	}
	if err != nil {
		logger.Warn("Handler failed:", req.Method, err)
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrToolExecutionFailed,
			Message: err.Error(),
		}
		return resp
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrInternal,
			Message: "Failed to marshal result: " + err.Error(),
		}
		return resp
	}
	resp.Result = resultBytes
	logger.Debug("Full response:", string(resultBytes))
	return resp
}

func (s *Server) handler(name string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[name]
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params any) (any, error) {
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// handleInitialize answers with the protocol version the client asked for
func (s *Server) handleInitialize(params any) (any, error) {
	requestedProtocolVersion := "2024-11-05"

	var paramsMap map[string]any
	if raw, ok := params.(json.RawMessage); ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &paramsMap); err != nil {
			return nil, fmt.Errorf("invalid initialize parameters: %w", err)
		}
	}
	if version, ok := paramsMap["protocolVersion"].(string); ok && version != "" {
		requestedProtocolVersion = version
	}
	logger.Info("Initializing with protocol version", requestedProtocolVersion, "and", len(s.GetTools()), "tools")

	type serverInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	return struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      serverInfo     `json:"serverInfo"`
	}{
		ProtocolVersion: requestedProtocolVersion,
		Capabilities:    map[string]any{"tools": map[string]any{"listChanged": false}},
		ServerInfo:      serverInfo{Name: serverName, Version: serverVersion},
	}, nil
}

// handleInitialized does not require a response
func (s *Server) handleInitialized(params any) (any, error) {
	return nil, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return struct{}{}, nil
}

func (s *Server) handleToolsCall(params any) (any, error) {
	var call struct {
		Arguments map[string]any `json:"arguments"`
		Name      string         `json:"name"`
	}
	raw, ok := params.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("invalid tools/call parameters")
	}
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, fmt.Errorf("invalid tools/call parameters: %v", err)
	}
	logger.Info("Tool call requested for:", call.Name)

	handler := s.handler(call.Name)
	if handler == nil {
		return nil, fmt.Errorf("tool not found: %s", call.Name)
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}

	result, err := handler(call.Arguments)
	if err != nil {
		// tool failures are results, so the client can show them
		return &protocol.ToolResult{
			Content: []protocol.Content{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}
	return result, nil
}
