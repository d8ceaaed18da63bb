package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/providers/tts"
	"github.com/yoockh/wacrm/internal/storage"
)

type AudioService interface {
	// Publish turns synthesized audio into a URL for the client, or nil when
	// there is no audio. An upload failure falls back to an inline data URL.
	Publish(ctx context.Context, contactID, messageID string, res tts.Result) *string
}

type audioService struct {
	uploader storage.Uploader
	log      *logrus.Logger
}

// NewAudioService accepts a nil uploader; audio is then always inlined.
func NewAudioService(uploader storage.Uploader, log *logrus.Logger) AudioService {
	return &audioService{uploader: uploader, log: log}
}

func audioObjectName(contactID, messageID string) string {
	return fmt.Sprintf("replies/%s/%s.mp3", contactID, messageID)
}

func (s *audioService) Publish(ctx context.Context, contactID, messageID string, res tts.Result) *string {
	if !res.OK() {
		return nil
	}
	if s.uploader == nil {
		return res.DataURL()
	}

	ct := res.ContentType
	if ct == "" {
		ct = "audio/mpeg"
	}
	url, err := s.uploader.Upload(ctx, audioObjectName(contactID, messageID), ct, bytes.NewReader(res.Audio))
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"contact_id": contactID,
			"message_id": messageID,
		}).Warn("audio upload failed; returning inline audio")
		return res.DataURL()
	}
	return &url
}
