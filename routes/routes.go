package routes

import (
	"time"

	"opsdash/handlers"
	"opsdash/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSessionRoutes registers the board session endpoints.
func RegisterSessionRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	sessions := api.Group("/sessions")
	{
		sessions.POST("", hb.StartSession)
		sessions.GET("/:sessionID", hb.GetSession)
		sessions.DELETE("/:sessionID", hb.EndSession)

		sessions.POST("/:sessionID/modal", hb.OpenModal)
		sessions.DELETE("/:sessionID/modal", hb.CloseModal)

		sessions.PUT("/:sessionID/date", hb.PickDate)
		sessions.PUT("/:sessionID/slot", hb.PickSlot)

		sessions.POST("/:sessionID/meetings", hb.SubmitCreate)
		sessions.POST("/:sessionID/reschedule", hb.SubmitReschedule)
		sessions.POST("/:sessionID/delete", hb.ConfirmDelete)

		sessions.GET("/:sessionID/summary", hb.GetSummaryView)
		sessions.GET("/:sessionID/notifications", hb.ListInbox)
		sessions.POST("/:sessionID/notifications/read", hb.MarkInboxRead)
	}
}

// RegisterMeetingRoutes registers the stateless meeting endpoints.
func RegisterMeetingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	meetings := api.Group("/meetings")
	{
		meetings.GET("", hb.ListMeetings)
		meetings.POST("/:meetingID/cancel", hb.CancelMeeting)
		meetings.DELETE("/:meetingID", hb.DeleteMeeting)
		meetings.GET("/:meetingID/join", hb.JoinMeeting)
		meetings.GET("/:meetingID/summary", hb.MeetingSummary)
	}
	api.GET("/projects", hb.ListProjects)
}

// RegisterAvailabilityRoutes registers the slot index endpoints.
func RegisterAvailabilityRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/availability", hb.GetAvailability)
	api.POST("/availability/refresh", hb.RefreshAvailability)
}

// RegisterCalendarRoutes registers the month grid and export endpoints.
func RegisterCalendarRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/calendar", hb.CalendarMonth)
	api.GET("/calendar.ics", hb.CalendarICS)
	api.GET("/calendar/:date", hb.CalendarDay)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, maxRequestsPerMin int) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", handlers.SessionHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", hb.Health)

	api := r.Group("/api/scheduling")
	api.Use(middleware.RateLimitMiddleware(maxRequestsPerMin))
	RegisterSessionRoutes(api, hb)
	RegisterMeetingRoutes(api, hb)
	RegisterAvailabilityRoutes(api, hb)
	RegisterCalendarRoutes(api, hb)
}
