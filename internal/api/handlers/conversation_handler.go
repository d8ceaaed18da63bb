package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/wacrm/internal/services"
)

type ConversationHandler struct {
	svc services.ConversationService
}

func NewConversationHandler(svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// ListByContact returns the contact's latest messages, oldest first. An
// unparsable limit falls back to the service default.
func (h *ConversationHandler) ListByContact(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	contactID := c.Param("contact_id")

	limit := 0
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := h.svc.ListByContact(c.Request.Context(), contactID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contact_id": contactID,
		"messages":   rows,
	})
}
