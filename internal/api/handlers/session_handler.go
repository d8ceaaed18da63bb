package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

type SessionHandler struct {
	svc     services.SessionService
	context services.ContextService
	traces  services.TraceRecorder
}

func NewSessionHandler(svc services.SessionService, context services.ContextService, traces services.TraceRecorder) *SessionHandler {
	return &SessionHandler{svc: svc, context: context, traces: traces}
}

type StartSessionRequest struct {
	ContactID   string  `json:"contact_id" binding:"required"`
	AIProfileID *string `json:"ai_profile_id"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Start", "invalid request body", err))
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), req.ContactID, req.AIProfileID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		CreatedAt: sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"` // open|pending|closed
}

func (h *SessionHandler) SetStatus(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.SetStatus", "invalid request body", err))
		return
	}

	sess, err := h.svc.SetStatus(c.Request.Context(), c.Param("session_id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

// Prompt previews the system prompt a reply in this session would use.
func (h *SessionHandler) Prompt(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	sessionID := c.Param("session_id")
	lang := services.NormalizeLanguage(c.Query("language"))

	prompt, err := h.context.BuildSystemPrompt(c.Request.Context(), sessionID, lang)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"language":   lang,
		"prompt":     prompt,
	})
}

func (h *SessionHandler) Traces(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	sessionID := c.Param("session_id")

	var limit int64 = 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	rows, err := h.traces.List(c.Request.Context(), sessionID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"traces":     rows,
	})
}
