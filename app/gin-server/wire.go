package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/config"
	"github.com/yoockh/wacrm/internal/api/handlers"
	"github.com/yoockh/wacrm/internal/api/middleware"
	"github.com/yoockh/wacrm/internal/api/routes"
	"github.com/yoockh/wacrm/internal/cache"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/providers/llm"
	"github.com/yoockh/wacrm/internal/providers/stt"
	"github.com/yoockh/wacrm/internal/providers/tts"
	mongorepo "github.com/yoockh/wacrm/internal/repositories/mongo"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/services"
	"github.com/yoockh/wacrm/internal/storage"
	"github.com/yoockh/wacrm/internal/workers"
	"google.golang.org/api/option"
)

type application struct {
	routes     routes.Deps
	voiceNotes *workers.VoiceNoteWorkerPool
	closers    []func() error
	log        *logrus.Logger
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("close failed")
		}
	}
}

// build connects the backends and wires services to handlers. Only Postgres
// is mandatory; Redis, Mongo, GCS, STT and Vertex are switched on by config.
func build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*application, error) {
	app := &application{log: log}

	if err := config.InitPostgres(cfg.Postgres); err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected")
	if cfg.Postgres.AutoMigrate {
		if err := config.Migrate(config.PostgresDB); err != nil {
			return nil, err
		}
		log.Info("PostgreSQL migrated")
	}
	db := config.PostgresDB

	var credCache cache.Cache = cache.NewMemoryCache(0)
	if cfg.Redis.Target() != "" {
		if err := config.InitRedis(cfg.Redis); err != nil {
			return nil, err
		}
		credCache = cache.NewRedisCache(config.RedisClient, cache.DefaultNamespace)
		app.closers = append(app.closers, config.RedisClient.Close)
		log.Info("Redis connected")
	}

	var traceRepo mongorepo.TraceRepository
	if cfg.Mongo.URI != "" {
		if err := config.InitMongo(cfg.Mongo); err != nil {
			return nil, err
		}
		if err := config.EnsureMongoIndexes(cfg.Mongo); err != nil {
			log.WithError(err).Warn("mongo index setup failed")
		}
		traceRepo = mongorepo.NewTraceRepo(config.MongoDatabase(cfg.Mongo))
		app.closers = append(app.closers, func() error { return config.MongoClient.Disconnect(context.Background()) })
		log.Info("MongoDB connected")
	}

	var gcpOpts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		gcpOpts = append(gcpOpts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}

	var uploader storage.Uploader
	if cfg.GCSAudioBucket != "" {
		u, err := storage.NewGCSUploader(ctx, cfg.GCSAudioBucket, gcpOpts...)
		if err != nil {
			return nil, err
		}
		uploader = u
		app.closers = append(app.closers, u.Close)
	}

	var sttProvider stt.Provider
	if cfg.SpeechToTextEnabled {
		p, err := stt.NewGoogleSpeech(ctx, gcpOpts...)
		if err != nil {
			return nil, err
		}
		sttProvider = p
		app.closers = append(app.closers, p.Close)
	}

	providers := map[models.Provider]llm.Provider{
		models.ProviderOpenAI: llm.NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.BaseURL, http.DefaultClient),
	}
	if cfg.Gemini.Backend == "vertex" {
		v, err := llm.NewVertexGemini(ctx, cfg.Gemini.VertexProjectID, cfg.Gemini.VertexLocation, cfg.Gemini.Model, gcpOpts...)
		if err != nil {
			return nil, err
		}
		providers[models.ProviderGemini] = v
		app.closers = append(app.closers, v.Close)
	} else {
		providers[models.ProviderGemini] = llm.NewGemini(cfg.Gemini.Model, cfg.Gemini.BaseURL, http.DefaultClient)
	}

	// repositories
	sessionRepo := pgrepo.NewChatSessionRepo(db)
	contactRepo := pgrepo.NewContactRepo(db)
	profileRepo := pgrepo.NewAIProfileRepo(db)
	trainingRepo := pgrepo.NewTrainingRepo(db)
	messageRepo := pgrepo.NewMessageRepo(db)
	exchangeRepo := pgrepo.NewExchangeRepo(db)
	credentialRepo := pgrepo.NewCredentialRepo(db)
	preferenceRepo := pgrepo.NewPreferenceRepo(db)

	// services
	credSvc := services.NewCredentialService(credentialRepo, credCache, map[string]string{
		models.CredentialOpenAI:     cfg.OpenAI.APIKey,
		models.CredentialGemini:     cfg.Gemini.APIKey,
		models.CredentialElevenLabs: cfg.ElevenLabs.APIKey,
	}, cfg.CredentialCacheTTL, log)
	prefSvc := services.NewPreferenceService(preferenceRepo)
	contextSvc := services.NewContextService(sessionRepo, profileRepo, trainingRepo, cfg.GroundingMaxChars, log)
	historySvc := services.NewHistoryService(messageRepo, cfg.HistoryLimit)
	synth := tts.NewElevenLabs(cfg.ElevenLabs.Model, cfg.ElevenLabs.Timeout)
	speechSvc := services.NewSpeechService(credSvc, prefSvc, synth, cfg.ProviderTimeout, log)
	audioSvc := services.NewAudioService(uploader, log)
	traces := services.NewTraceRecorder(traceRepo, cfg.TraceTTL, log)
	transcriptionSvc := services.NewTranscriptionService(sttProvider)

	replySvc := services.NewReplyService(services.ReplyDeps{
		Sessions:    sessionRepo,
		Exchanges:   exchangeRepo,
		Context:     contextSvc,
		History:     historySvc,
		Credentials: credSvc,
		Speech:      speechSvc,
		Audio:       audioSvc,
		Traces:      traces,
		Providers:   providers,
		Models: map[models.Provider]string{
			models.ProviderOpenAI: cfg.OpenAI.Model,
			models.ProviderGemini: cfg.Gemini.Model,
		},
		HistoryLimit: cfg.HistoryLimit,
		Timeout:      cfg.ProviderTimeout,
		Log:          log,
	})

	app.routes = routes.Deps{
		Reply:        handlers.NewReplyHandler(replySvc),
		Speech:       handlers.NewSpeechHandler(speechSvc, transcriptionSvc),
		Session:      handlers.NewSessionHandler(services.NewSessionService(sessionRepo, contactRepo, profileRepo), contextSvc, traces),
		Conversation: handlers.NewConversationHandler(services.NewConversationService(messageRepo, contactRepo)),
		Preference:   handlers.NewPreferenceHandler(prefSvc),
		Credential:   handlers.NewCredentialHandler(credSvc),
		Auth: middleware.AuthOptions{
			Secret:             cfg.Auth.JWTSecret,
			Issuer:             cfg.Auth.JWTIssuer,
			Audience:           cfg.Auth.JWTAudience,
			DefaultPrincipalID: cfg.Auth.DefaultPrincipalID,
		},
	}

	if cfg.VoiceNoteWorkers > 0 {
		switch {
		case config.RedisClient == nil:
			log.Warn("VOICE_NOTE_WORKERS set but Redis is not configured; voice notes disabled")
		case sttProvider == nil:
			log.Warn("VOICE_NOTE_WORKERS set but SPEECH_TO_TEXT_ENABLED is off; voice notes disabled")
		default:
			app.voiceNotes = &workers.VoiceNoteWorkerPool{
				Redis:       config.RedisClient,
				NumWorkers:  cfg.VoiceNoteWorkers,
				Transcriber: transcriptionSvc,
				Replies:     replySvc,
				Principal:   models.SystemPrincipal(cfg.Auth.DefaultPrincipalID),
				Logger:      log,
				Stream:      cfg.VoiceNoteStream,
				Group:       cfg.VoiceNoteGroup,
			}
		}
	}

	return app, nil
}
