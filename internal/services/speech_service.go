package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/metrics"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/providers/tts"
	"github.com/yoockh/wacrm/internal/utils"
)

type SpeechRequest struct {
	Text            string
	VoiceID         *string
	Stability       *float64
	SimilarityBoost *float64
}

type SpeechService interface {
	// Speak is the speech-only entry point; every failure is an error.
	Speak(ctx context.Context, p models.Principal, req SpeechRequest) ([]byte, error)
	// Attempt synthesizes a reply best effort. Failures come back inside
	// the Result, never as an error.
	Attempt(ctx context.Context, p models.Principal, text string) tts.Result
}

type speechService struct {
	creds   CredentialService
	prefs   PreferenceService
	synth   tts.Synthesizer
	timeout time.Duration
	log     *logrus.Logger
}

func NewSpeechService(creds CredentialService, prefs PreferenceService, synth tts.Synthesizer, timeout time.Duration, log *logrus.Logger) SpeechService {
	return &speechService{creds: creds, prefs: prefs, synth: synth, timeout: timeout, log: log}
}

func voiceFromPreference(pref *models.UserPreference) tts.Voice {
	v := tts.Voice{
		ID:              models.DefaultVoiceID,
		Model:           models.DefaultVoiceModel,
		Stability:       models.DefaultStability,
		SimilarityBoost: models.DefaultSimilarityBoost,
	}
	if pref == nil {
		return v
	}
	if pref.VoiceID != "" {
		v.ID = pref.VoiceID
	}
	if pref.VoiceModel != "" {
		v.Model = pref.VoiceModel
	}
	v.Stability = pref.Stability
	v.SimilarityBoost = pref.SimilarityBoost
	return v
}

func (s *speechService) Speak(ctx context.Context, p models.Principal, req SpeechRequest) ([]byte, error) {
	const op = "SpeechService.Speak"

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "text is required", nil)
	}
	if req.Stability != nil && !unitInterval(*req.Stability) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "stability must be between 0 and 1", nil)
	}
	if req.SimilarityBoost != nil && !unitInterval(*req.SimilarityBoost) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "similarityBoost must be between 0 and 1", nil)
	}

	key, ok, err := s.creds.Resolve(ctx, models.CredentialElevenLabs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.E(utils.CodeNotConfigured, op, "ElevenLabs API key is not configured", nil)
	}

	pref, err := s.prefs.Sync(ctx, p)
	if err != nil {
		return nil, err
	}
	voice := voiceFromPreference(pref)
	if req.VoiceID != nil && strings.TrimSpace(*req.VoiceID) != "" {
		voice.ID = strings.TrimSpace(*req.VoiceID)
	}
	if req.Stability != nil {
		voice.Stability = *req.Stability
	}
	if req.SimilarityBoost != nil {
		voice.SimilarityBoost = *req.SimilarityBoost
	}

	cctx, cancel := withOptionalTimeout(ctx, s.timeout)
	defer cancel()

	res := s.synth.Synthesize(cctx, text, voice, key)
	if res.Err != nil {
		metrics.RecordSpeech(metrics.SpeechFailed)
		return nil, utils.E(utils.CodeUpstream, op, "speech synthesis failed", res.Err)
	}
	metrics.RecordSpeech(metrics.SpeechDone)
	return res.Audio, nil
}

func (s *speechService) Attempt(ctx context.Context, p models.Principal, text string) tts.Result {
	key, ok, err := s.creds.Resolve(ctx, models.CredentialElevenLabs)
	if err != nil {
		metrics.RecordSpeech(metrics.SpeechFailed)
		return tts.Fail(tts.KindSetup, err)
	}
	if !ok {
		metrics.RecordSpeech(metrics.SpeechSkipped)
		return tts.Result{Err: &tts.SynthesisError{Kind: tts.KindDisabled, Body: "no elevenlabs credential"}}
	}

	pref, err := s.prefs.Sync(ctx, p)
	if err != nil {
		metrics.RecordSpeech(metrics.SpeechFailed)
		return tts.Fail(tts.KindSetup, err)
	}

	cctx, cancel := withOptionalTimeout(ctx, s.timeout)
	defer cancel()

	res := s.synth.Synthesize(cctx, text, voiceFromPreference(pref), key)
	if res.Err != nil {
		metrics.RecordSpeech(metrics.SpeechFailed)
		return res
	}
	metrics.RecordSpeech(metrics.SpeechDone)
	return res
}

// withOptionalTimeout bounds ctx only when d is positive.
func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
