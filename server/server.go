package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	lectern "github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/dialog"
	"github.com/lectern-ai/lectern/logging"
)

// Options configures a Server.
type Options struct {
	// Logger defaults to a NoOpLogger.
	Logger logging.Logger
}

// Server is the HTTP layer over the orchestration service.
type Server struct {
	service *lectern.Service
	logger  logging.Logger
	engine  *gin.Engine
}

// ChatRequest is the /chat request body.
type ChatRequest struct {
	SessionID     string `json:"session_id"`
	UserInput     string `json:"user_input"`
	ProfID        string `json:"prof_id" binding:"required"`
	SessionClosed bool   `json:"session_closed"`
	IsInitial     bool   `json:"is_initial"`
}

// ChatResponse is the /chat response body.
type ChatResponse struct {
	SessionID     string `json:"session_id"`
	Response      string `json:"response,omitempty"`
	SessionClosed bool   `json:"session_closed"`
}

// DebateRequest is the /debate request body.
type DebateRequest struct {
	SessionID     string `json:"session_id"`
	UserInput     string `json:"user_input"`
	ProfID1       string `json:"prof_id1" binding:"required"`
	ProfID2       string `json:"prof_id2" binding:"required"`
	SessionClosed bool   `json:"session_closed"`
	IsInitial     bool   `json:"is_initial"`
}

// DebateResponse is the /debate response body.
type DebateResponse struct {
	SessionID     string `json:"session_id"`
	Response      string `json:"response,omitempty"`
	SessionClosed bool   `json:"session_closed"`
	From          string `json:"from,omitempty"`
}

// ProfessorInfo is one entry of the /professors listing.
type ProfessorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// New constructs the HTTP server over the given service.
func New(service *lectern.Service, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{service: service, logger: opts.Logger}

	engine := gin.New()
	engine.Use(gin.Recovery(), corsMiddleware())

	engine.POST("/chat", s.handleChat)
	engine.POST("/debate", s.handleDebate)
	engine.GET("/professors", s.handleProfessors)
	engine.GET("/healthz", s.handleHealth)

	s.engine = engine
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// corsMiddleware mirrors the permissive policy of the original deployment:
// the frontends are served from arbitrary origins.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.service.ChatTurn(c.Request.Context(),
		req.SessionID, req.ProfID, req.UserInput, req.IsInitial, req.SessionClosed)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID:     res.SessionID,
		Response:      res.Response,
		SessionClosed: res.Closed,
	})
}

func (s *Server) handleDebate(c *gin.Context) {
	var req DebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.service.DebateTurn(c.Request.Context(),
		req.SessionID, req.ProfID1, req.ProfID2, req.UserInput, req.IsInitial, req.SessionClosed)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, DebateResponse{
		SessionID:     res.SessionID,
		Response:      res.Response,
		SessionClosed: res.Closed,
		From:          res.From,
	})
}

func (s *Server) handleProfessors(c *gin.Context) {
	defs := s.service.Personas()
	infos := make([]ProfessorInfo, 0, len(defs))
	for _, d := range defs {
		infos = append(infos, ProfessorInfo{ID: d.ID, Name: d.Name})
	}
	c.JSON(http.StatusOK, gin.H{"professors": infos})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps orchestrator errors onto HTTP statuses. Provider failures
// return a generic indication with the session left open for retry; the
// handler never fabricates a response.
func (s *Server) fail(c *gin.Context, err error) {
	var provErr *core.ProviderError
	switch {
	case errors.Is(err, core.ErrUnknownPersona):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, dialog.ErrDebateNotStarted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &provErr):
		s.logger.Error("turn failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "completion failed"})
	default:
		s.logger.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
