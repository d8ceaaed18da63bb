package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// WhatsApp voice notes are OGG/Opus at 16 kHz.
const DefaultSampleRateHz = 16000

// GoogleSpeech transcribes short voice notes with a synchronous Recognize
// call. Customers switch between Indonesian and English, so the other one
// is always offered as an alternative language.
type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context, opts ...option.ClientOption) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_OGG_OPUS,
		SampleRateHz: DefaultSampleRateHz,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	primary := LanguageCode(language)
	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: recognitionConfig(g.Encoding, g.SampleRateHz, primary),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}
	text, conf := joinResults(resp.GetResults())
	return text, conf, nil
}

func recognitionConfig(enc speechpb.RecognitionConfig_AudioEncoding, rate int32, primary string) *speechpb.RecognitionConfig {
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   enc,
		SampleRateHertz:            rate,
		LanguageCode:               primary,
		EnableAutomaticPunctuation: true,
	}
	switch primary {
	case "id-ID":
		cfg.AlternativeLanguageCodes = []string{"en-US"}
	case "en-US":
		cfg.AlternativeLanguageCodes = []string{"id-ID"}
	}
	return cfg
}

// joinResults concatenates the top alternative of each consecutive result
// and averages their confidence. Results carry sequential audio segments.
func joinResults(results []*speechpb.SpeechRecognitionResult) (string, float64) {
	var parts []string
	var sum float64
	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		top := strings.TrimSpace(alts[0].GetTranscript())
		if top == "" {
			continue
		}
		parts = append(parts, top)
		sum += float64(alts[0].GetConfidence())
	}
	if len(parts) == 0 {
		return "", 0
	}
	return strings.Join(parts, " "), sum / float64(len(parts))
}
