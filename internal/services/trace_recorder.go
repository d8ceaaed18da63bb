package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/models"
	mongorepo "github.com/yoockh/wacrm/internal/repositories/mongo"
	"github.com/yoockh/wacrm/internal/utils"
)

type TraceRecorder interface {
	Record(ctx context.Context, t *models.ReplyTrace)
	// List returns a session's latest traces, newest first.
	List(ctx context.Context, sessionID string, limit int64) ([]models.ReplyTrace, error)
}

type traceRecorder struct {
	repo mongorepo.TraceRepository
	ttl  time.Duration
	log  *logrus.Logger
}

// NewTraceRecorder returns a recorder that drops traces when repo is nil.
func NewTraceRecorder(repo mongorepo.TraceRepository, ttl time.Duration, log *logrus.Logger) TraceRecorder {
	return &traceRecorder{repo: repo, ttl: ttl, log: log}
}

func (r *traceRecorder) Record(ctx context.Context, t *models.ReplyTrace) {
	if r.repo == nil || t == nil {
		return
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if r.ttl > 0 {
		t.ExpiresAt = t.CreatedAt.Add(r.ttl)
	}

	// the request may already be cancelled; the trace should still land
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := r.repo.Insert(wctx, t); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"session_id": t.SessionID,
			"state":      t.State,
		}).Warn("failed to record reply trace")
	}
}

func (r *traceRecorder) List(ctx context.Context, sessionID string, limit int64) ([]models.ReplyTrace, error) {
	const op = "TraceRecorder.List"

	if r.repo == nil {
		return nil, utils.E(utils.CodeNotConfigured, op, "reply traces are not enabled", nil)
	}
	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rows, err := r.repo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reply traces", err)
	}
	return rows, nil
}
