package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

type ReplyHandler struct {
	svc services.ReplyService
}

func NewReplyHandler(svc services.ReplyService) *ReplyHandler {
	return &ReplyHandler{svc: svc}
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	ContactID string `json:"contactId"`
	Language  string `json:"language"` // id|en, default id
}

// Chat replies with OpenAI unless the session's AI profile names a model.
func (h *ReplyHandler) Chat(c *gin.Context) { h.reply(c, models.ProviderOpenAI) }

// ChatGemini is Chat with Gemini as the fallback backend.
func (h *ReplyHandler) ChatGemini(c *gin.Context) { h.reply(c, models.ProviderGemini) }

func (h *ReplyHandler) reply(c *gin.Context, fallback models.Provider) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFlatError(c, http.StatusInternalServerError, utils.E(utils.CodeInvalidArgument, "ReplyHandler.Chat", "invalid request body", err))
		return
	}

	out, err := h.svc.Reply(c.Request.Context(), p, services.ReplyInput{
		Message:         req.Message,
		SessionID:       req.SessionID,
		ContactID:       req.ContactID,
		Language:        req.Language,
		DefaultProvider: fallback,
		RequestID:       c.GetString("request_id"),
	})
	if err != nil {
		writeFlatError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
