package handler

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pmalov/spravka/internal/pkg/errs"
	"github.com/pmalov/spravka/internal/pkg/response"
)

// Asker is the chat entry point the handler depends on.
type Asker interface {
	Ask(ctx context.Context, sessionID, query string) (string, error)
}

type askRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type ChatHandler struct {
	chat  Asker
	ready *atomic.Bool
}

func NewChatHandler(chat Asker, ready *atomic.Bool) *ChatHandler {
	return &ChatHandler{chat: chat, ready: ready}
}

// Ask answers one user question. Internal failure detail goes to the log,
// never into the response body.
func (h *ChatHandler) Ask(c *gin.Context) {
	if !h.ready.Load() {
		handleError(c, errs.ErrNotReady)
		return
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Request body must be a JSON object with query and session_id")
		return
	}
	if req.Query == "" || req.SessionID == "" {
		response.Error(c, http.StatusBadRequest, "Fields query and session_id must be non-empty")
		return
	}
	answer, err := h.chat.Ask(c.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Error("ask failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		handleError(c, err)
		return
	}
	response.Success(c, askResponse{Answer: answer})
}

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errs.IsNotReady(err):
		response.Error(c, http.StatusServiceUnavailable, "Service is not ready yet")
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

// Status reports liveness for probes and the curious.
func (h *ChatHandler) Status(c *gin.Context) {
	response.Success(c, gin.H{"status": "spravka RAG assistant API is running"})
}
