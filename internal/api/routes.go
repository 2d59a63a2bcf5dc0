package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, d Deps) *Handlers {
	h := NewHandlers(d)

	api := router.Group("/api")

	// Health check is open to the gateway's probes
	api.GET("/health", h.HealthCheck)

	authed := api.Group("", h.Identify())
	{
		authed.GET("/cache/stats", h.CacheStats)
		authed.GET("/dashboard", h.Dashboard)

		registerDirectory(authed, "/stations", h, d.Stations)
		registerDirectory(authed, "/users", h, d.Users)

		firs := authed.Group("/firs")
		{
			firs.GET("", h.ListFIRs)
			firs.POST("", h.CreateFIR)
			firs.GET("/export.csv", h.ExportCSV)

			firs.GET("/:id", h.GetFIR)
			firs.PUT("/:id", h.UpdateFIR)
			firs.POST("/:id/status", h.ChangeStatus)
			firs.POST("/:id/reassign", h.Reassign)
			firs.PUT("/:id/team", h.SetTeam)
			firs.PUT("/:id/deadline", h.SetDeadline)

			firs.GET("/:id/legal-suggestions", h.ListSuggestions)
			firs.POST("/:id/legal-suggestions", h.GenerateSuggestions)

			firs.GET("/:id/report", h.ReportHTML)
			firs.GET("/:id/report.pdf", h.ReportPDF)

			firs.GET("/:id/evidence", h.ListEvidence)
			firs.POST("/:id/evidence", h.AddEvidence)
			firs.GET("/:id/evidence/:eid/file", h.EvidenceFile)

			firs.GET("/:id/witnesses", h.ListWitnesses)
			firs.POST("/:id/witnesses", h.AddWitness)

			firs.GET("/:id/hearings", h.ListHearings)
			firs.POST("/:id/hearings", h.AddHearing)

			firs.GET("/:id/notes", h.ListNotes)
			firs.POST("/:id/notes", h.AddNote)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
			notifications.POST("/:id/read", h.MarkNotificationRead)
		}
	}

	return h
}
