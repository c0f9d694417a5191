package transport

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/protocol"
)

// StdioTransport implements communication over standard input/output.
// Requests are JSON objects, one after another, responses are one per line
type StdioTransport struct {
	decoder *json.Decoder
	writer  *bufio.Writer
}

// NewStdioTransport creates a new transport that uses stdin/stdout
func NewStdioTransport() *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport creates a transport over any reader and writer
func NewStreamTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{
		decoder: json.NewDecoder(bufio.NewReader(r)),
		writer:  bufio.NewWriter(w),
	}
}

// ReadRequest reads the next JSON-RPC request. io.EOF means the client went away
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	logger.Debug("Waiting for request on stdin...")

	var raw json.RawMessage
	if err := t.decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			logger.Info("Received EOF on stdin, client disconnected")
			return nil, io.EOF
		}
		logger.Error("Error reading from stdin:", err)
		return nil, err
	}
	logger.Debug("Received raw request:", string(raw))

	request, err := protocol.ParseJsonRpcRequest(raw)
	if err != nil {
		logger.Error("Failed to parse JSON-RPC request:", err)
		return nil, &MalformedRequestError{Err: err}
	}
	return request, nil
}

// MalformedRequestError is a request that was read whole but is not valid JSON-RPC.
// The stream is still usable after one
type MalformedRequestError struct {
	Err error
}

func (e *MalformedRequestError) Error() string { return "malformed request: " + e.Err.Error() }
func (e *MalformedRequestError) Unwrap() error { return e.Err }

// WriteResponse writes a JSON-RPC response followed by a newline and flushes
func (t *StdioTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal response:", err)
		return err
	}
	responseBytes = append(responseBytes, '\n')
	logger.Debug("Sending response:", string(responseBytes))

	if _, err := t.writer.Write(responseBytes); err != nil {
		logger.Error("Failed to write response:", err)
		return err
	}
	if err := t.writer.Flush(); err != nil {
		logger.Error("Failed to flush response:", err)
		return err
	}
	return nil
}
