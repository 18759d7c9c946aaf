package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/scan"
	"github.com/Paranoid-AF/promptline/suggest"
)

// Engine produces suggestions and learns executed commands.
type Engine interface {
	Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error)
	Record(cmd string)
	Close()
}

// sessionEntry tracks a cancellable in-flight request for a session.
type sessionEntry struct {
	requestID int
	cancel    context.CancelFunc
}

// Server listens on a Unix domain socket for suggestion requests.
type Server struct {
	listener net.Listener
	sockPath string

	mu       sync.Mutex
	engine   Engine
	sessions map[string]sessionEntry
	// newEngine rebuilds the engine on a "reload" config action. Nil
	// disables reloading.
	newEngine func() (Engine, error)
}

// NewServer creates a new IPC server bound to the given socket path, serving
// suggestions from a local engine built from cfg.
func NewServer(sockPath string, cfg *promptline.Config) (*Server, error) {
	srv, err := NewServerWithEngine(sockPath, suggest.NewEngine(cfg))
	if err != nil {
		return nil, err
	}
	srv.newEngine = func() (Engine, error) {
		cfg, err := promptline.LoadConfig()
		if err != nil {
			return nil, err
		}
		return suggest.NewEngine(cfg), nil
	}
	return srv, nil
}

// NewServerWithEngine creates a new IPC server with a custom Engine.
func NewServerWithEngine(sockPath string, engine Engine) (*Server, error) {
	// Remove stale socket file if it exists
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}

	return &Server{
		listener: listener,
		sockPath: sockPath,
		engine:   engine,
		sessions: make(map[string]sessionEntry),
	}, nil
}

// Serve accepts connections and handles requests.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close shuts down the server, the engine, and removes the socket file.
func (s *Server) Close() {
	s.mu.Lock()
	for sid, entry := range s.sessions {
		entry.cancel()
		delete(s.sessions, sid)
	}
	engine := s.engine
	s.mu.Unlock()

	engine.Close()
	s.listener.Close()
	os.Remove(s.sockPath)
}

func (s *Server) currentEngine() Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return
	}
	raw := scanner.Bytes()

	// Check if this is a record request (has "type":"record" field)
	var recReq promptline.RecordRequest
	if err := json.Unmarshal(raw, &recReq); err == nil && recReq.Type == "record" {
		s.handleRecordRequest(conn, &recReq)
		return
	}

	// Check if this is a config request (has "action" field)
	var cfgReq promptline.ConfigRequest
	if err := json.Unmarshal(raw, &cfgReq); err == nil && cfgReq.Action != "" {
		s.handleConfigRequest(conn, &cfgReq)
		return
	}

	var req promptline.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		slog.Warn("invalid request", "error", err)
		return
	}
	slog.Debug("request", "session", req.SessionID, "request_id", req.RequestID,
		"text", scan.Redact(req.CurrentText), "caret", req.CurrentCaretPosition)

	// Cancel any in-flight request for this session and create a new context.
	ctx, cancel := context.WithCancel(context.Background())
	sid := req.SessionID
	reqID := req.RequestID
	if sid != "" {
		s.mu.Lock()
		if prev, ok := s.sessions[sid]; ok {
			prev.cancel()
		}
		s.sessions[sid] = sessionEntry{requestID: reqID, cancel: cancel}
		s.mu.Unlock()
	}
	defer func() {
		cancel()
		if sid != "" {
			s.mu.Lock()
			if cur, ok := s.sessions[sid]; ok && cur.requestID == reqID {
				delete(s.sessions, sid)
			}
			s.mu.Unlock()
		}
	}()

	req.Ast = scan.Parse(req.CurrentText)
	resp := s.suggest(ctx, &req)

	// If cancelled, skip writing; the client has already moved on.
	if ctx.Err() != nil {
		return
	}

	writeResponse(conn, resp)
}

func (s *Server) suggest(ctx context.Context, req *promptline.Request) *promptline.Response {
	resp := &promptline.Response{
		RequestID:  req.RequestID,
		Candidates: []promptline.Candidate{},
	}

	if caret := promptline.UTF16Len(req.CurrentText); req.CurrentCaretPosition < 0 || req.CurrentCaretPosition > caret {
		resp.Error = &promptline.Error{Code: "invalid_request", Message: "caret_position out of range"}
		return resp
	}

	list, err := s.currentEngine().Suggest(ctx, req)
	if err != nil {
		resp.Error = &promptline.Error{Code: "suggest_failed", Message: err.Error()}
		return resp
	}
	for _, sug := range list {
		resp.Candidates = append(resp.Candidates, suggest.ToCandidate(sug))
	}
	return resp
}

func (s *Server) handleRecordRequest(conn net.Conn, req *promptline.RecordRequest) {
	resp := promptline.RecordResponse{OK: true}

	cmd := strings.TrimSpace(req.Command)
	if cmd == "" {
		resp.OK = false
		resp.Error = &promptline.Error{Code: "invalid_request", Message: "command is required"}
	} else {
		slog.Debug("record", "command", scan.Redact(cmd))
		s.currentEngine().Record(cmd)
	}

	writeResponse(conn, resp)
}

func (s *Server) handleConfigRequest(conn net.Conn, req *promptline.ConfigRequest) {
	var resp promptline.ConfigResponse

	switch req.Action {
	case "get":
		cfg, err := promptline.LoadConfig()
		if err != nil {
			resp.Error = &promptline.Error{
				Code:    "config_error",
				Message: err.Error(),
			}
		} else {
			resp.Config = cfg
		}

	case "reload":
		if err := s.reloadEngine(); err != nil {
			resp.Error = &promptline.Error{
				Code:    "config_error",
				Message: err.Error(),
			}
		}

	case "defaults":
		resp.Config = promptline.DefaultConfig()

	case "validate":
		cfg, err := promptline.LoadConfig()
		if err != nil {
			resp.Error = &promptline.Error{
				Code:    "config_error",
				Message: err.Error(),
			}
		} else {
			resp.Warnings = promptline.ValidateConfig(cfg)
		}

	default:
		resp.Error = &promptline.Error{
			Code:    "unknown_action",
			Message: "unknown config action: " + req.Action,
		}
	}

	writeResponse(conn, resp)
}

var errReloadUnsupported = errors.New("engine reload is not supported")

// reloadEngine swaps in an engine built from the current config file.
// History recorded since startup is re-read from the shell history file only.
func (s *Server) reloadEngine() error {
	s.mu.Lock()
	newEngine := s.newEngine
	s.mu.Unlock()
	if newEngine == nil {
		return errReloadUnsupported
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.engine
	s.engine = engine
	s.mu.Unlock()

	old.Close()
	slog.Info("engine reloaded")
	return nil
}

func writeResponse(conn net.Conn, resp any) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}

	slog.Debug("response", "data", string(data))

	conn.Write(append(data, '\n'))
}
