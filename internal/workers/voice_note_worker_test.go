package workers

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

type fakeTranscriber struct {
	out   *services.Transcript
	err   error
	audio string
	lang  string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioBase64, language string) (*services.Transcript, error) {
	f.audio = audioBase64
	f.lang = language
	return f.out, f.err
}

type fakeReplies struct {
	out *services.ReplyOutput
	err error
	p   models.Principal
	in  services.ReplyInput
	n   int
}

func (f *fakeReplies) Reply(_ context.Context, p models.Principal, in services.ReplyInput) (*services.ReplyOutput, error) {
	f.n++
	f.p = p
	f.in = in
	return f.out, f.err
}

func newPool(tr *fakeTranscriber, rp *fakeReplies) *VoiceNoteWorkerPool {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &VoiceNoteWorkerPool{
		Transcriber: tr,
		Replies:     rp,
		Principal:   models.SystemPrincipal("system"),
		Logger:      l,
	}
}

func TestParseVoiceNote(t *testing.T) {
	n, ok := ParseVoiceNote(map[string]any{
		"contact_id":   "c1",
		"session_id":   "s1",
		"language":     "en",
		"provider":     "gemini",
		"audio_base64": "AAAA",
	})
	require.True(t, ok)
	assert.Equal(t, "c1", n.ContactID)
	assert.Equal(t, "s1", n.SessionID)
	assert.Equal(t, "en", n.Language)
	assert.Equal(t, models.ProviderGemini, n.Provider)

	n, ok = ParseVoiceNote(map[string]any{"contact_id": "c1", "session_id": "s1", "audio_url": "http://x/a.ogg"})
	require.True(t, ok)
	assert.Equal(t, models.ProviderOpenAI, n.Provider)

	_, ok = ParseVoiceNote(map[string]any{"contact_id": "c1", "session_id": "s1"})
	assert.False(t, ok)
	_, ok = ParseVoiceNote(map[string]any{"session_id": "s1", "audio_base64": "AAAA"})
	assert.False(t, ok)
}

func TestProcess_RepliesToTranscript(t *testing.T) {
	audioURL := "https://storage.googleapis.com/b/replies/c1/m1.mp3"
	tr := &fakeTranscriber{out: &services.Transcript{Text: "halo, jam buka?", Confidence: 0.91}}
	rp := &fakeReplies{out: &services.ReplyOutput{Reply: "Kami buka jam 9.", AudioURL: &audioURL}}
	p := newPool(tr, rp)

	ev := p.Process(context.Background(), "1-0", VoiceNote{
		ContactID: "c1", SessionID: "s1", Language: "id", Provider: models.ProviderGemini, AudioBase64: "AAAA",
	})

	assert.Equal(t, "reply", ev.Type)
	assert.Equal(t, "halo, jam buka?", ev.Transcript)
	assert.Equal(t, 0.91, ev.Confidence)
	assert.Equal(t, "Kami buka jam 9.", ev.Reply)
	require.NotNil(t, ev.AudioURL)
	assert.Equal(t, audioURL, *ev.AudioURL)

	assert.Equal(t, "AAAA", tr.audio)
	assert.Equal(t, "id", tr.lang)
	assert.Equal(t, models.RoleService, rp.p.Role)
	assert.Equal(t, "halo, jam buka?", rp.in.Message)
	assert.Equal(t, "s1", rp.in.SessionID)
	assert.Equal(t, "c1", rp.in.ContactID)
	assert.Equal(t, models.ProviderGemini, rp.in.DefaultProvider)
	assert.Equal(t, "1-0", rp.in.RequestID)
}

func TestProcess_FetchesAudioURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ogg-bytes"))
	}))
	defer srv.Close()

	tr := &fakeTranscriber{out: &services.Transcript{Text: "hello"}}
	rp := &fakeReplies{out: &services.ReplyOutput{Reply: "hi"}}
	p := newPool(tr, rp)

	ev := p.Process(context.Background(), "2-0", VoiceNote{ContactID: "c1", SessionID: "s1", AudioURL: srv.URL})
	assert.Equal(t, "reply", ev.Type)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ogg-bytes")), tr.audio)
}

func TestProcess_Failures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	t.Run("fetch", func(t *testing.T) {
		rp := &fakeReplies{}
		ev := newPool(&fakeTranscriber{}, rp).Process(context.Background(), "1", VoiceNote{ContactID: "c1", SessionID: "s1", AudioURL: notFound.URL})
		assert.Equal(t, "failed", ev.Type)
		assert.Equal(t, "fetch", ev.Stage)
		assert.Contains(t, ev.Error, "404")
		assert.Zero(t, rp.n)
	})

	t.Run("stt", func(t *testing.T) {
		rp := &fakeReplies{}
		tr := &fakeTranscriber{err: utils.E(utils.CodeUpstream, "TranscriptionService.Transcribe", "transcription failed", errors.New("boom"))}
		ev := newPool(tr, rp).Process(context.Background(), "1", VoiceNote{ContactID: "c1", SessionID: "s1", AudioBase64: "AAAA"})
		assert.Equal(t, "stt", ev.Stage)
		assert.Equal(t, "transcription failed", ev.Error)
		assert.Zero(t, rp.n)
	})

	t.Run("empty transcript", func(t *testing.T) {
		rp := &fakeReplies{}
		tr := &fakeTranscriber{out: &services.Transcript{Text: "  "}}
		ev := newPool(tr, rp).Process(context.Background(), "1", VoiceNote{ContactID: "c1", SessionID: "s1", AudioBase64: "AAAA"})
		assert.Equal(t, "stt", ev.Stage)
		assert.Zero(t, rp.n)
	})

	t.Run("reply", func(t *testing.T) {
		tr := &fakeTranscriber{out: &services.Transcript{Text: "hello"}}
		rp := &fakeReplies{err: utils.E(utils.CodeNotConfigured, "ReplyService.Reply", "openai API key is not configured", nil)}
		ev := newPool(tr, rp).Process(context.Background(), "1", VoiceNote{ContactID: "c1", SessionID: "s1", AudioBase64: "AAAA"})
		assert.Equal(t, "failed", ev.Type)
		assert.Equal(t, "reply", ev.Stage)
		assert.Equal(t, "openai API key is not configured", ev.Error)
		assert.Equal(t, "hello", ev.Transcript)
	})
}

func TestReplyChannel(t *testing.T) {
	assert.Equal(t, "contact:c1:reply", ReplyChannel("c1"))
}
