package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/utils"
)

const maxVoiceNoteBytes = 10 << 20

// VoiceNote is one queued inbound voice message.
type VoiceNote struct {
	ContactID   string
	SessionID   string
	Language    string
	Provider    models.Provider
	AudioBase64 string
	AudioURL    string
}

// VoiceNoteEvent is published on ReplyChannel(contactID) once a note is handled.
type VoiceNoteEvent struct {
	Type       string  `json:"type"` // reply|failed
	RedisID    string  `json:"redis_id"`
	SessionID  string  `json:"session_id"`
	Transcript string  `json:"transcript,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Reply      string  `json:"reply,omitempty"`
	AudioURL   *string `json:"audio_url,omitempty"`
	Stage      string  `json:"stage,omitempty"` // fetch|stt|reply
	Error      string  `json:"error,omitempty"`
}

func ReplyChannel(contactID string) string { return "contact:" + contactID + ":reply" }

type VoiceNoteWorkerPool struct {
	Redis      *redis.Client
	NumWorkers int

	Transcriber services.TranscriptionService
	Replies     services.ReplyService
	// Principal the replies act as; voice notes arrive without a user.
	Principal  models.Principal
	HTTPClient *http.Client

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *VoiceNoteWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Transcriber == nil || p.Replies == nil {
		return errors.New("VoiceNoteWorkerPool missing dependency: Redis/Transcriber/Replies must be set")
	}
	p.defaults()

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	p.Logger.WithFields(logrus.Fields{
		"stream":  p.Stream,
		"group":   p.Group,
		"workers": p.NumWorkers,
	}).Info("voice note workers started")
	return nil
}

func (p *VoiceNoteWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = "voicenote:stream"
	}
	if p.Group == "" {
		p.Group = "voicenote-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 1
	}
	if p.HTTPClient == nil {
		p.HTTPClient = http.DefaultClient
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

func (p *VoiceNoteWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

// ParseVoiceNote reads the stream fields; ok is false when the entry cannot
// be processed at all.
func ParseVoiceNote(values map[string]any) (VoiceNote, bool) {
	getStr := func(k string) string {
		v, ok := values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return strings.TrimSpace(s)
	}

	n := VoiceNote{
		ContactID:   getStr("contact_id"),
		SessionID:   getStr("session_id"),
		Language:    getStr("language"),
		Provider:    models.ProviderOpenAI,
		AudioBase64: getStr("audio_base64"),
		AudioURL:    getStr("audio_url"),
	}
	if getStr("provider") == string(models.ProviderGemini) {
		n.Provider = models.ProviderGemini
	}
	if n.ContactID == "" || n.SessionID == "" || (n.AudioBase64 == "" && n.AudioURL == "") {
		return n, false
	}
	return n, true
}

func (p *VoiceNoteWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	note, ok := ParseVoiceNote(msg.Values)
	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"contact_id": note.ContactID,
		"session_id": note.SessionID,
	})
	if !ok {
		log.Warn("voice note dropped: missing fields")
		return
	}

	ev := p.Process(ctx, msg.ID, note)
	if ev.Type == "failed" {
		log.WithField("stage", ev.Stage).Warn("voice note failed: " + ev.Error)
	}

	payload, _ := json.Marshal(ev)
	if err := p.Redis.Publish(ctx, ReplyChannel(note.ContactID), string(payload)).Err(); err != nil {
		log.WithError(err).Warn("voice note publish failed")
	}
}

// Process transcribes the note and replies to it. It never returns an error;
// failures come back as a "failed" event naming the stage.
func (p *VoiceNoteWorkerPool) Process(ctx context.Context, redisID string, note VoiceNote) VoiceNoteEvent {
	p.defaults()
	ev := VoiceNoteEvent{RedisID: redisID, SessionID: note.SessionID}
	failed := func(stage string, err error) VoiceNoteEvent {
		ev.Type = "failed"
		ev.Stage = stage
		ev.Error = safeMessage(err)
		return ev
	}

	audio := note.AudioBase64
	if audio == "" {
		b, err := p.fetch(ctx, note.AudioURL)
		if err != nil {
			return failed("fetch", err)
		}
		audio = base64.StdEncoding.EncodeToString(b)
	}

	tr, err := p.Transcriber.Transcribe(ctx, audio, note.Language)
	if err != nil {
		return failed("stt", err)
	}
	ev.Transcript = tr.Text
	ev.Confidence = tr.Confidence
	if strings.TrimSpace(tr.Text) == "" {
		return failed("stt", errors.New("empty transcript"))
	}

	out, err := p.Replies.Reply(ctx, p.Principal, services.ReplyInput{
		Message:         tr.Text,
		SessionID:       note.SessionID,
		ContactID:       note.ContactID,
		Language:        note.Language,
		DefaultProvider: note.Provider,
		RequestID:       redisID,
	})
	if err != nil {
		return failed("reply", err)
	}

	ev.Type = "reply"
	ev.Reply = out.Reply
	ev.AudioURL = out.AudioURL
	return ev
}

func (p *VoiceNoteWorkerPool) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("audio_url returned status " + strconv.Itoa(resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceNoteBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty audio")
	}
	return body, nil
}

func safeMessage(err error) string {
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
