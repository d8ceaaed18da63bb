package tts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haguro/elevenlabs-go"
)

const (
	DefaultElevenLabsModel   = "eleven_multilingual_v2"
	DefaultElevenLabsTimeout = 30 * time.Second
)

type textToSpeechFunc func(ctx context.Context, apiKey string, timeout time.Duration, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, error)

func callElevenLabs(ctx context.Context, apiKey string, timeout time.Duration, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, error) {
	return elevenlabs.NewClient(ctx, apiKey, timeout).TextToSpeech(voiceID, req)
}

type ElevenLabs struct {
	model   string
	timeout time.Duration
	call    textToSpeechFunc
}

func NewElevenLabs(model string, timeout time.Duration) *ElevenLabs {
	if model == "" {
		model = DefaultElevenLabsModel
	}
	if timeout <= 0 {
		timeout = DefaultElevenLabsTimeout
	}
	return &ElevenLabs{model: model, timeout: timeout, call: callElevenLabs}
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voice Voice, apiKey string) Result {
	if strings.TrimSpace(text) == "" {
		return Fail(KindInvalid, errors.New("text is empty"))
	}
	if apiKey == "" {
		return Fail(KindDisabled, errors.New("no api key"))
	}
	if voice.ID == "" {
		return Fail(KindSetup, errors.New("no voice id"))
	}

	model := voice.Model
	if model == "" {
		model = e.model
	}
	req := elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: model,
		VoiceSettings: &elevenlabs.VoiceSettings{
			Stability:       float32(voice.Stability),
			SimilarityBoost: float32(voice.SimilarityBoost),
		},
	}

	audio, err := e.call(ctx, apiKey, e.timeout, voice.ID, req)
	if err != nil {
		return Result{Err: classify(err)}
	}
	if len(audio) == 0 {
		return Result{Err: &SynthesisError{Kind: KindUpstream, Body: "empty audio"}}
	}
	return Result{Audio: audio, ContentType: "audio/mpeg"}
}

// classify maps SDK errors onto the kinds callers log and count.
func classify(err error) *SynthesisError {
	var apiErr *elevenlabs.APIError
	var validationErr *elevenlabs.ValidationError
	switch {
	case errors.As(err, &apiErr):
		return &SynthesisError{Kind: KindUpstream, Body: apiErr.Error(), Err: err}
	case errors.As(err, &validationErr):
		return &SynthesisError{Kind: KindUpstream, Body: validationErr.Error(), Err: err}
	default:
		return &SynthesisError{Kind: KindTransport, Err: err}
	}
}
