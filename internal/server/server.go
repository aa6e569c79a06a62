package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/anime-filter/internal/imaging"
	"github.com/ironsheep/anime-filter/internal/logging"
	"github.com/ironsheep/anime-filter/internal/preset"
	"github.com/ironsheep/anime-filter/internal/preview"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// Options configures a Server.
type Options struct {
	// Presets defaults to preset.Builtin().
	Presets *preset.Registry

	// Debounce is the preview quiet period. See preview.Options.
	Debounce time.Duration

	// PreviewMaxDimension downscales preview sources. 0 keeps full size.
	PreviewMaxDimension int

	// PreviewQuality is the JPEG quality of preview images.
	PreviewQuality int

	// Version is reported in the initialize handshake.
	Version string

	Logger *zap.Logger
}

// Server handles MCP protocol communication
type Server struct {
	cache     *imaging.ImageCache
	presets   *preset.Registry
	previewer *preview.Previewer
	opts      Options
	logger    *zap.Logger

	mu     sync.Mutex
	active string // path of the last image_load

	wmu sync.Mutex
	enc *json.Encoder // set while Serve runs
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

// New creates a new MCP server instance
func New(opts Options) *Server {
	if opts.Presets == nil {
		opts.Presets = preset.Builtin()
	}
	if opts.PreviewQuality <= 0 {
		opts.PreviewQuality = imaging.DefaultJPEGQuality
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	logger := logging.OrNop(opts.Logger)
	s := &Server{
		cache:   imaging.NewImageCache(),
		presets: opts.Presets,
		opts:    opts,
		logger:  logger.Named("server"),
	}
	s.previewer = preview.New(preview.Options{
		Debounce: opts.Debounce,
		OnResult: s.notifyPreview,
		Logger:   logger,
	})
	return s
}

// Run serves on stdin and stdout until stdin closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
// The preview worker runs for the lifetime of the call.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.previewer.Run(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.wmu.Lock()
	s.enc = json.NewEncoder(w)
	s.wmu.Unlock()
	defer func() {
		s.wmu.Lock()
		s.enc = nil
		s.wmu.Unlock()
	}()
	s.logger.Info("server started", zap.String("version", s.opts.Version), zap.Int("presets", s.presets.Len()))

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			resp = s.errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			resp = s.handleRequest(&req)
		}

		if resp != nil {
			if err := s.write(resp); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	s.logger.Info("input closed, server stopping")
	return nil
}

// write encodes one message. Responses and preview notifications come from
// different goroutines, so writes are serialized.
func (s *Server) write(v interface{}) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.enc == nil {
		return nil
	}
	return s.enc.Encode(v)
}

// notifyPreview tells the client that preview_latest has a new result.
func (s *Server) notifyPreview(res preview.Result) {
	params := map[string]interface{}{
		"id":     res.ID,
		"source": res.Label,
	}
	if res.Err != nil {
		params["error"] = res.Err.Error()
	}
	err := s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/preview_ready",
		Params:  params,
	})
	if err != nil {
		s.logger.Warn("failed to send preview notification", zap.Error(err))
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
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
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "anime-filter",
				"version": s.opts.Version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response. Empty data is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}
