package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yoockh/wacrm/internal/api/handlers"
	"github.com/yoockh/wacrm/internal/api/middleware"
)

type Deps struct {
	Reply        *handlers.ReplyHandler
	Speech       *handlers.SpeechHandler
	Session      *handlers.SessionHandler
	Conversation *handlers.ConversationHandler
	Preference   *handlers.PreferenceHandler
	Credential   *handlers.CredentialHandler
	Auth         middleware.AuthOptions
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Authenticate(d.Auth))

	api.POST("/chat", d.Reply.Chat)
	api.POST("/chat/gemini", d.Reply.ChatGemini)

	api.POST("/speech", d.Speech.Speak)
	api.POST("/speech/transcribe", d.Speech.Transcribe)

	api.POST("/sessions", d.Session.Start)
	api.GET("/sessions/:session_id", d.Session.Get)
	api.PATCH("/sessions/:session_id/status", d.Session.SetStatus)
	api.GET("/sessions/:session_id/prompt", d.Session.Prompt)
	api.GET("/sessions/:session_id/traces", d.Session.Traces)

	api.GET("/contacts/:contact_id/messages", d.Conversation.ListByContact)

	api.GET("/preferences", d.Preference.Get)
	api.PUT("/preferences", d.Preference.Update)

	api.GET("/credentials/status", d.Credential.Status)
	api.PUT("/credentials", middleware.RequireAdmin(), d.Credential.Upsert)
}
