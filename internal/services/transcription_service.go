package services

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/yoockh/wacrm/internal/providers/stt"
	"github.com/yoockh/wacrm/internal/utils"
)

// 10 MB of decoded audio, roughly a minute of voice note at typical bitrates.
const maxTranscriptionBytes = 10 << 20

type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type TranscriptionService interface {
	Transcribe(ctx context.Context, audioBase64, language string) (*Transcript, error)
}

type transcriptionService struct {
	stt stt.Provider
}

// NewTranscriptionService accepts a nil provider; every call then reports
// the capability as not configured.
func NewTranscriptionService(p stt.Provider) TranscriptionService {
	return &transcriptionService{stt: p}
}

func (s *transcriptionService) Transcribe(ctx context.Context, audioBase64, language string) (*Transcript, error) {
	const op = "TranscriptionService.Transcribe"

	if s.stt == nil {
		return nil, utils.E(utils.CodeNotConfigured, op, "speech-to-text is not enabled", nil)
	}

	raw := strings.TrimSpace(audioBase64)
	if i := strings.Index(raw, ";base64,"); strings.HasPrefix(raw, "data:") && i >= 0 {
		raw = raw[i+len(";base64,"):]
	}
	if raw == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio is required", nil)
	}
	audio, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio must be base64", err)
	}
	if len(audio) > maxTranscriptionBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio is too large", nil)
	}

	text, conf, err := s.stt.Transcribe(ctx, audio, language)
	if err != nil {
		return nil, utils.E(utils.CodeUpstream, op, "transcription failed", err)
	}
	return &Transcript{Text: text, Confidence: conf}, nil
}
