package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scanpad/internal/canvas"
	"github.com/ironsheep/scanpad/internal/editor"
	"github.com/ironsheep/scanpad/internal/logging"
)

const (
	serverName      = "scanpad"
	protocolVersion = "2024-11-05"
)

// Server handles MCP protocol communication
type Server struct {
	editor  *editor.Editor
	raster  *canvas.Raster
	logger  *logrus.Logger
	version string
	ctx     context.Context

	writeMu sync.Mutex
	encoder *json.Encoder
}

// Options configures a Server.
type Options struct {
	// Editor wires the session. Surface and Notifier are supplied by the
	// server and are overwritten.
	Editor editor.Options

	// Overlay styles the crop outline; the zero value means the default.
	Overlay canvas.OverlayStyle

	Logger  *logrus.Logger
	Version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server with its own editing session.
func New(opts Options) *Server {
	if opts.Overlay == (canvas.OverlayStyle{}) {
		opts.Overlay = canvas.DefaultOverlayStyle
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		raster:  canvas.NewRaster(opts.Overlay),
		logger:  logging.OrDiscard(opts.Logger),
		version: opts.Version,
		ctx:     context.Background(),
	}

	eo := opts.Editor
	eo.Surface = s.raster
	eo.Notifier = editor.NotifierFunc(s.notify)
	if eo.Logger == nil {
		eo.Logger = s.logger
	}
	s.editor = editor.New(eo)
	return s
}

// Editor returns the session behind the server.
func (s *Server) Editor() *editor.Editor {
	return s.editor
}

// Run serves MCP on stdin and stdout until stdin closes.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads requests from in and writes responses to out until in is
// exhausted or ctx ends.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.ctx = ctx

	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.writeMu.Lock()
	s.encoder = json.NewEncoder(out)
	s.writeMu.Unlock()

	s.logger.WithField("version", s.version).Info("MCP server ready")

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.WithError(err).Warn("Failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// write encodes one message. Notifications may arrive from the
// recognition goroutine, so writes are serialised.
func (s *Server) write(v interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.encoder == nil {
		return
	}
	if err := s.encoder.Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode message")
	}
}

// notify sends a user-visible failure as an MCP log message.
func (s *Server) notify(err error) {
	s.logger.WithError(err).Warn("Notifying client")
	s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params: map[string]interface{}{
			"level":  "error",
			"logger": serverName,
			"data":   err.Error(),
		},
	})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.WithField("method", req.Method).Debug("Request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": s.version,
			},
		},
	}
}
