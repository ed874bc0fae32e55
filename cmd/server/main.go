package main

import (
	"log"

	"console-gateway/internal/api"
	"console-gateway/internal/backend"
	"console-gateway/internal/broadcast"
	"console-gateway/internal/chat"
	"console-gateway/internal/config"
	"console-gateway/internal/database"
	"console-gateway/internal/distribution"
	"console-gateway/internal/poller"
	"console-gateway/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	hub := ws.NewHub()
	go hub.Run()

	client := backend.NewClient(cfg.BackendURL)
	store := chat.NewStore()
	reconciler := chat.NewReconciler(store, client, hub)
	lists := distribution.NewGormStore(database.GormDB)
	dispatcher := broadcast.NewDispatcher(client.SendTemplateMessage, cfg.BroadcastDelay)

	messageHandler := api.NewMessageHandler(client, store, reconciler)
	appointmentHandler := api.NewAppointmentHandler(client)
	broadcastHandler := api.NewBroadcastHandler(client, lists, dispatcher, hub)
	listHandler := api.NewListHandler(lists)
	mediaHandler := api.NewMediaHandler(client)
	dashboardHandler := api.NewDashboardHandler(client)

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})
	r.GET("/health", dashboardHandler.HealthCheck)

	apiGroup := r.Group("/api")
	{
		// Conversations and messages
		apiGroup.GET("/conversations", messageHandler.GetConversations)
		apiGroup.DELETE("/conversations/:userId/history", messageHandler.DeleteConversationHistory)
		apiGroup.GET("/messages/:userId", messageHandler.GetMessages)
		apiGroup.POST("/messages", messageHandler.SendMessage)
		apiGroup.POST("/messages/format", messageHandler.FormatMessage)
		apiGroup.GET("/messages/status/:id", messageHandler.GetMessageStatus)
		apiGroup.PUT("/messages/read/:id", messageHandler.MarkMessageRead)

		// Media
		apiGroup.POST("/media/upload", mediaHandler.UploadMedia)
		apiGroup.POST("/media/send", mediaHandler.SendMedia)
		apiGroup.GET("/media/:id/download", mediaHandler.DownloadMedia)
		apiGroup.GET("/media/:id/info", mediaHandler.GetMediaInfo)

		// Templates and broadcasts
		apiGroup.GET("/templates", broadcastHandler.GetTemplates)
		apiGroup.POST("/templates/send", broadcastHandler.SendTemplate)
		apiGroup.POST("/broadcast", broadcastHandler.SendBroadcast)
		apiGroup.GET("/broadcast/history", broadcastHandler.GetBroadcastHistory)

		// Distribution lists
		apiGroup.GET("/lists", listHandler.GetLists)
		apiGroup.POST("/lists", listHandler.CreateList)
		apiGroup.GET("/lists/:id", listHandler.GetList)
		apiGroup.DELETE("/lists/:id", listHandler.DeleteList)
		apiGroup.POST("/lists/:id/numbers", listHandler.AddNumber)
		apiGroup.DELETE("/lists/:id/numbers/:number", listHandler.RemoveNumber)
		apiGroup.POST("/lists/:id/import", listHandler.ImportNumbers)

		// Appointments
		apiGroup.GET("/appointments", appointmentHandler.GetAppointments)
		apiGroup.GET("/appointments/calendar", appointmentHandler.GetCalendar)
		apiGroup.GET("/appointments/slots", appointmentHandler.GetSlots)
		apiGroup.GET("/appointments/user/:userId", appointmentHandler.GetUserAppointments)
		apiGroup.GET("/appointments/:id", appointmentHandler.GetAppointmentDetails)
		apiGroup.POST("/appointments", appointmentHandler.CreateAppointment)
		apiGroup.PUT("/appointments/:id", appointmentHandler.UpdateAppointment)
		apiGroup.DELETE("/appointments/:id", appointmentHandler.CancelAppointment)
		apiGroup.POST("/appointments/:id/reminder", appointmentHandler.SendReminder)

		// Dashboard
		apiGroup.GET("/metrics", dashboardHandler.GetMetrics)
		apiGroup.GET("/nps/stats", dashboardHandler.GetNpsStats)
		apiGroup.GET("/nps/feedbacks", dashboardHandler.GetNpsFeedbacks)
		apiGroup.POST("/nps/trigger/:userId", dashboardHandler.TriggerNpsSurvey)
		apiGroup.GET("/nps/user/:userId", dashboardHandler.GetUserNpsResponses)
	}

	inboxPoller := poller.New(client, hub, cfg.PollInterval)
	stop := make(chan struct{})
	defer close(stop)
	go inboxPoller.Run(stop)

	log.Printf("Console gateway starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
