package tts

import (
	"context"
	"encoding/base64"
	"fmt"
)

type Voice struct {
	ID              string
	Model           string
	Stability       float64
	SimilarityBoost float64
}

type ErrorKind string

const (
	KindDisabled  ErrorKind = "disabled"  // no credential configured
	KindSetup     ErrorKind = "setup"     // credential or voice lookup failed
	KindInvalid   ErrorKind = "invalid"   // nothing to synthesize
	KindTransport ErrorKind = "transport" // request never got an answer
	KindUpstream  ErrorKind = "upstream"  // provider answered non-2xx
)

type SynthesisError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *SynthesisError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("tts %s: status %d: %s", e.Kind, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("tts %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("tts %s: %s", e.Kind, e.Body)
	}
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Summary is Error without the wrapped cause, for traces served over HTTP.
func (e *SynthesisError) Summary() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("tts %s: status %d: %s", e.Kind, e.StatusCode, e.Body)
	case e.Body != "":
		return fmt.Sprintf("tts %s: %s", e.Kind, e.Body)
	default:
		return fmt.Sprintf("tts %s", e.Kind)
	}
}

// Result is either synthesized audio or the reason there is none. Callers
// decide whether a failure matters; the reply path never propagates it.
type Result struct {
	Audio       []byte
	ContentType string
	Err         *SynthesisError
}

func Fail(kind ErrorKind, err error) Result {
	return Result{Err: &SynthesisError{Kind: kind, Err: err}}
}

func (r Result) OK() bool { return r.Err == nil && len(r.Audio) > 0 }

// DataURL renders the audio inline, or nil when there is none.
func (r Result) DataURL() *string {
	if !r.OK() {
		return nil
	}
	ct := r.ContentType
	if ct == "" {
		ct = "audio/mpeg"
	}
	s := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(r.Audio)
	return &s
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice, apiKey string) Result
}
