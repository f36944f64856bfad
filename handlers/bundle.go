// File: opsdash/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Board session endpoints
	StartSession     gin.HandlerFunc
	GetSession       gin.HandlerFunc
	EndSession       gin.HandlerFunc
	OpenModal        gin.HandlerFunc
	CloseModal       gin.HandlerFunc
	PickDate         gin.HandlerFunc
	PickSlot         gin.HandlerFunc
	SubmitCreate     gin.HandlerFunc
	SubmitReschedule gin.HandlerFunc
	ConfirmDelete    gin.HandlerFunc
	GetSummaryView   gin.HandlerFunc
	ListInbox        gin.HandlerFunc
	MarkInboxRead    gin.HandlerFunc

	// Availability endpoints
	GetAvailability     gin.HandlerFunc
	RefreshAvailability gin.HandlerFunc

	// Meeting endpoints
	ListMeetings   gin.HandlerFunc
	CancelMeeting  gin.HandlerFunc
	DeleteMeeting  gin.HandlerFunc
	JoinMeeting    gin.HandlerFunc
	MeetingSummary gin.HandlerFunc
	ListProjects   gin.HandlerFunc

	// Calendar endpoints
	CalendarMonth gin.HandlerFunc
	CalendarDay   gin.HandlerFunc
	CalendarICS   gin.HandlerFunc

	Health gin.HandlerFunc
}
