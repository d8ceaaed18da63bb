package stt

import (
	"context"
	"strings"
)

type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}

// LanguageCode expands the short codes used by chat requests into BCP-47
// tags the recognizer accepts. Anything already tagged passes through.
func LanguageCode(language string) string {
	l := strings.TrimSpace(language)
	switch strings.ToLower(l) {
	case "", "id", "in":
		return "id-ID"
	case "en":
		return "en-US"
	}
	return l
}
