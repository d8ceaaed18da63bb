package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

type PreferenceHandler struct {
	svc services.PreferenceService
}

func NewPreferenceHandler(svc services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// Get syncs first, so a principal without a row gets the defaults.
func (h *PreferenceHandler) Get(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	pref, err := h.svc.Sync(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pref)
}

func (h *PreferenceHandler) Update(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req services.PreferenceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PreferenceHandler.Update", "invalid request body", err))
		return
	}

	pref, err := h.svc.Update(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pref)
}
