package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	"github.com/monishmahesha2006/resume-relevance-system/internal/types"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/match"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is one frame on the batch progress websocket.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

type Config struct {
	Addr          string
	Workers       int
	SkipUnchanged bool
}

// Server exposes the scoring engine over HTTP: single-pair matching, batch
// matching over all stored documents, and stored result queries. A
// websocket endpoint streams batch progress.
type Server struct {
	config  Config
	engine  *match.Engine
	docs    types.DocumentStore
	results types.ResultStore
	log     *zap.Logger
}

func New(config Config, engine *match.Engine, docs types.DocumentStore, results types.ResultStore, log *zap.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		config:  config,
		engine:  engine,
		docs:    docs,
		results: results,
		log:     log,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /match/all", s.handleMatchAll)
	mux.HandleFunc("POST /match/{resumeID}/{jdID}", s.handleMatch)
	mux.HandleFunc("GET /results", s.handleResults)
	mux.HandleFunc("GET /results/{resumeID}/{jdID}", s.handleResult)
	mux.HandleFunc("/ws/batch", s.handleBatchWebSocket)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.Info("starting server", zap.String("addr", s.config.Addr))
	return http.ListenAndServe(s.config.Addr, s.Routes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	resumeID := r.PathValue("resumeID")
	jdID := r.PathValue("jdID")

	resume, err := s.docs.GetResume(r.Context(), resumeID)
	if err != nil {
		s.writeError(w, "resume "+resumeID, err)
		return
	}
	jd, err := s.docs.GetJobDescription(r.Context(), jdID)
	if err != nil {
		s.writeError(w, "job description "+jdID, err)
		return
	}

	result, err := s.engine.Match(r.Context(), resume, jd)
	if err != nil {
		s.writeError(w, "match", err)
		return
	}

	if err := s.results.UpsertResult(r.Context(), result); err != nil {
		s.writeError(w, "store result", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMatchAll(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	orch, err := s.newOrchestrator(nil)
	if err != nil {
		s.writeError(w, "batch", err)
		return
	}

	summary, err := orch.Run(r.Context(), nil, nil, force)
	if err != nil {
		s.writeError(w, "batch", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	results, err := s.results.ListResults(r.Context(), limit)
	if err != nil {
		s.writeError(w, "list results", err)
		return
	}
	if results == nil {
		results = []*models.MatchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.results.GetResult(r.Context(), r.PathValue("resumeID"), r.PathValue("jdID"))
	if err != nil {
		s.writeError(w, "result", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleBatchWebSocket runs a batch and streams per-pair progress frames,
// closing with a summary frame.
func (s *Server) handleBatchWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var start struct {
		Force bool `json:"force"`
	}
	if err := conn.ReadJSON(&start); err != nil {
		s.sendMessage(conn, "error", "invalid start message")
		return
	}

	orch, err := s.newOrchestrator(func(done, total int) {
		s.sendMessage(conn, "progress", "", map[string]int{"done": done, "total": total})
	})
	if err != nil {
		s.sendMessage(conn, "error", err.Error())
		return
	}

	summary, err := orch.Run(r.Context(), nil, nil, start.Force)
	if err != nil {
		s.sendMessage(conn, "error", err.Error())
		return
	}

	s.sendMessage(conn, "summary", "", summary)
}

func (s *Server) newOrchestrator(onProgress func(done, total int)) (*match.Orchestrator, error) {
	return match.NewOrchestrator(match.OrchestratorConfig{
		Workers:       s.config.Workers,
		SkipUnchanged: s.config.SkipUnchanged,
		OnProgress:    onProgress,
	}, s.engine, s.docs, s.results, s.log)
}

func (s *Server) sendMessage(conn *websocket.Conn, msgType, content string, data ...interface{}) {
	msg := Message{
		Type:    msgType,
		Content: content,
	}
	if len(data) > 0 {
		msg.Data = data[0]
	}
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn("error sending message", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, types.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.log.Error(what+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
