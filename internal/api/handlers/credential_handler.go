package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

type CredentialHandler struct {
	svc services.CredentialService
}

func NewCredentialHandler(svc services.CredentialService) *CredentialHandler {
	return &CredentialHandler{svc: svc}
}

// Status reports which credentials resolve, never their values.
func (h *CredentialHandler) Status(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	st, err := h.svc.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

type UpsertCredentialRequest struct {
	KeyName  string `json:"key_name" binding:"required"`
	KeyValue string `json:"key_value" binding:"required"`
	KeyType  string `json:"key_type"`
}

type UpsertCredentialResponse struct {
	KeyName   string `json:"key_name"`
	KeyType   string `json:"key_type"`
	UpdatedAt string `json:"updated_at"`
}

func (h *CredentialHandler) Upsert(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req UpsertCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CredentialHandler.Upsert", "invalid request body", err))
		return
	}

	cred, err := h.svc.Upsert(c.Request.Context(), p, req.KeyName, req.KeyValue, req.KeyType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, UpsertCredentialResponse{
		KeyName:   cred.KeyName,
		KeyType:   cred.KeyType,
		UpdatedAt: cred.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
