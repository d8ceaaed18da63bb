package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

type SpeechHandler struct {
	speech services.SpeechService
	stt    services.TranscriptionService
}

func NewSpeechHandler(speech services.SpeechService, stt services.TranscriptionService) *SpeechHandler {
	return &SpeechHandler{speech: speech, stt: stt}
}

type SpeakRequest struct {
	Text            string   `json:"text"`
	VoiceID         *string  `json:"voiceId,omitempty"`
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarityBoost,omitempty"`
}

type SpeakResponse struct {
	Audio string `json:"audio"` // base64 mp3
}

func (h *SpeechHandler) Speak(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFlatError(c, http.StatusBadRequest, utils.E(utils.CodeInvalidArgument, "SpeechHandler.Speak", "invalid request body", err))
		return
	}

	audio, err := h.speech.Speak(c.Request.Context(), p, services.SpeechRequest{
		Text:            req.Text,
		VoiceID:         req.VoiceID,
		Stability:       req.Stability,
		SimilarityBoost: req.SimilarityBoost,
	})
	if err != nil {
		writeFlatError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, SpeakResponse{Audio: base64.StdEncoding.EncodeToString(audio)})
}

type TranscribeRequest struct {
	Audio    string `json:"audio" binding:"required"` // base64, data URL accepted
	Language string `json:"language"`
}

func (h *SpeechHandler) Transcribe(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	var req TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SpeechHandler.Transcribe", "invalid request body", err))
		return
	}

	tr, err := h.stt.Transcribe(c.Request.Context(), req.Audio, req.Language)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tr)
}
