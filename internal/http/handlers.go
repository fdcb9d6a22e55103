package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/extraction"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/summarizer"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status        string   `json:"status"`
	RetrievalMode string   `json:"retrieval_mode"`
	Providers     []string `json:"providers"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		RetrievalMode: string(s.rag.RetrievalMode()),
		Providers:     s.registry.AvailableNames(),
	})
}

// IngestRequest is the request body for POST /api/v1/documents. Either
// document_text or document_path must be set; a path goes through the text
// extractor first.
type IngestRequest struct {
	DocumentID   string `json:"document_id"`
	DocumentText string `json:"document_text"`
	DocumentPath string `json:"document_path"`
	FileType     string `json:"file_type"`
}

func (s *Server) handleIngest(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DocumentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document_id is required")
	}

	text := req.DocumentText
	if text == "" && req.DocumentPath != "" {
		if s.extractor == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "path ingestion is not enabled")
		}
		extracted, err := s.extractor.Extract(c.Request().Context(), req.DocumentPath, req.FileType)
		if err != nil {
			return s.mapError(c, err)
		}
		text = extracted
	}
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document_text or document_path is required")
	}

	result, err := s.rag.ProcessDocument(c.Request().Context(), req.DocumentID, text)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// QuestionRequest is the request body for POST /api/v1/questions.
type QuestionRequest struct {
	Question            string     `json:"question"`
	DocumentID          string     `json:"document_id"`
	Model               string     `json:"model"`
	ConversationHistory []llm.Turn `json:"conversation_history"`
}

func (s *Server) handleQuestion(c echo.Context) error {
	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	if req.DocumentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document_id is required")
	}

	answer, err := s.rag.AnswerQuestion(c.Request().Context(), req.Question, req.DocumentID, req.Model, req.ConversationHistory)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, answer)
}

// ChatRequest is the request body for POST /api/v1/chat. The trailing user
// message is the question; everything before it is conversation history.
type ChatRequest struct {
	DocumentID string     `json:"document_id"`
	Messages   []llm.Turn `json:"messages"`
	Model      string     `json:"model"`
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DocumentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document_id is required")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages are required")
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != llm.RoleUser || last.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "last message must be a user question")
	}
	history := req.Messages[:len(req.Messages)-1]

	answer, err := s.rag.AnswerQuestion(c.Request().Context(), last.Content, req.DocumentID, req.Model, history)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, answer)
}

// SummarizeRequest is the request body for POST /api/v1/summaries.
type SummarizeRequest struct {
	Text    string             `json:"text"`
	Model   string             `json:"model"`
	Options summarizer.Options `json:"options"`
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req SummarizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.summarizer.Summarize(c.Request().Context(), req.Text, req.Model, req.Options)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// mapError converts domain errors to HTTP status codes.
func (s *Server) mapError(c echo.Context, err error) error {
	var allFailed *llm.AllProvidersError

	switch {
	case errors.Is(err, rag.ErrNoRelevantContent):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, rag.ErrInvalidConfig),
		errors.Is(err, rag.ErrEmptyDocument),
		errors.Is(err, summarizer.ErrTextTooShort),
		errors.Is(err, summarizer.ErrInvalidOptions),
		errors.Is(err, extraction.ErrUnsupportedFormat):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &allFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
