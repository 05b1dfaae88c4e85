package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/saathi-ai/saathi/internal/core"
	"github.com/saathi-ai/saathi/internal/logger"
	"github.com/saathi-ai/saathi/internal/rag"
)

// MsgNoQuestion is returned by the action endpoint when the engine forwards
// an empty question.
const MsgNoQuestion = "I'm sorry, I didn't get a question."

const maxAudioBytes = 10 << 20

// AnswerService produces a grounded answer for a question. Satisfied by
// *rag.Answerer.
type AnswerService interface {
	Answer(ctx context.Context, question string) (*core.Answer, error)
}

// IndexInfo describes the vector store backing the answerer, reported by the
// health endpoint.
type IndexInfo struct {
	Backend string `json:"backend"`
	Chunks  int    `json:"chunks"`
}

// Server exposes the dispatcher and the retrieval answerer over HTTP.
type Server struct {
	dispatcher *Dispatcher
	answerer   AnswerService
	info       IndexInfo
	router     *gin.Engine
}

// NewServer builds the HTTP surface. answerer may be nil when the retrieval
// side is hosted elsewhere; the action endpoint then reports failure.
func NewServer(d *Dispatcher, answerer AnswerService, info IndexInfo) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{dispatcher: d, answerer: answerer, info: info, router: gin.New()}

	s.router.Use(gin.Recovery(), corsMiddleware())
	s.router.GET("/healthz", s.handleHealth)
	s.router.POST("/webhook", s.handleWebhook)
	s.router.POST("/webhook/action", s.handleAction)
	return s
}

// Handler returns the root handler for use with http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "index": s.info})
}

type webhookRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// handleWebhook accepts either a JSON body with sender and message, or a
// multipart form carrying an audio file for voice input.
func (s *Server) handleWebhook(c *gin.Context) {
	req, err := parseWebhookRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.dispatcher.Handle(c.Request.Context(), req)
	if err != nil {
		var rej *Rejection
		if errors.As(err, &rej) {
			c.JSON(rej.Status, gin.H{"error": rej.Message})
			return
		}
		logger.Error("Webhook failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": result.Response,
		"language": result.Language,
	})
}

func parseWebhookRequest(c *gin.Context) (Request, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req := Request{
			Sender:  c.PostForm("sender"),
			Message: c.PostForm("message"),
		}

		file, _, err := c.Request.FormFile("audio")
		if err == nil {
			defer file.Close()
			audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
			if err != nil {
				return Request{}, errors.New("could not read audio")
			}
			req.Audio = audio
		}

		if req.Sender == "" {
			req.Sender = "anonymous"
		}
		return req, nil
	}

	var body webhookRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return Request{}, errors.New("invalid request body")
	}
	if body.Sender == "" {
		body.Sender = "anonymous"
	}
	return Request{Sender: body.Sender, Message: body.Message}, nil
}

// actionRequest is the subset of the Rasa action-server protocol we need.
type actionRequest struct {
	NextAction string `json:"next_action"`
	Tracker    struct {
		SenderID      string `json:"sender_id"`
		LatestMessage struct {
			Text string `json:"text"`
		} `json:"latest_message"`
	} `json:"tracker"`
}

type actionResponse struct {
	Events    []any        `json:"events"`
	Responses []core.Reply `json:"responses"`
}

// handleAction serves the engine's custom action webhook. The only action is
// the retrieval query, which answers the user's latest message from the
// document index.
func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	question := strings.TrimSpace(req.Tracker.LatestMessage.Text)
	if question == "" {
		c.JSON(http.StatusOK, actionResponse{
			Events:    []any{},
			Responses: []core.Reply{{Text: MsgNoQuestion}},
		})
		return
	}

	text := rag.FallbackAnswer
	if s.answerer != nil {
		answer, err := s.answerer.Answer(c.Request.Context(), question)
		if err != nil {
			logger.Error("Action %q failed: %v", req.NextAction, err)
		} else {
			text = answer.Text
		}
	}

	c.JSON(http.StatusOK, actionResponse{
		Events:    []any{},
		Responses: []core.Reply{{Text: text}},
	})
}
