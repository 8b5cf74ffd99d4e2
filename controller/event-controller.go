package controller

import (
	"strconv"
	"strings"

	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/service"
	"cedupscore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EventController struct {
	eventService *service.EventService
}

func NewEventController(db *gorm.DB) *EventController {
	return &EventController{
		eventService: service.NewEventService(db),
	}
}

func setupEventController(db *gorm.DB) []RouteInfo {
	e := NewEventController(db)
	routes := []RouteInfo{
		{Method: "GET", Path: "editions/:id/events", HandlerFunc: e.listEventsHandler()},
		{Method: "GET", Path: "events/:event_id", HandlerFunc: e.getEventHandler()},
		{Method: "POST", Path: "editions/:id/events", HandlerFunc: e.createEventHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "PUT", Path: "events/:event_id", HandlerFunc: e.replaceEventHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "DELETE", Path: "events/:event_id", HandlerFunc: e.deleteEventHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "PATCH", Path: "events/:event_id/update", HandlerFunc: e.updateEventStatusHandler(), Authenticated: true, RoleRequired: adminRoles},
	}
	return routes
}

func (e *EventController) listEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		editionId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		events, err := e.eventService.GetEventsForEdition(editionId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(events, toEventResponse))
	}
}

func (e *EventController) getEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		event, err := e.eventService.GetEventById(eventId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toEventResponse(event))
	}
}

func (e *EventController) createEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		editionId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var request EventCreate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		event := request.toModel()
		event.EditionId = editionId
		saved, err := e.eventService.SaveEvent(event)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toEventResponse(saved))
	}
}

func (e *EventController) replaceEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var request EventCreate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		event, err := e.eventService.ReplaceEvent(eventId, request.toModel())
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toEventResponse(event))
	}
}

func (e *EventController) deleteEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.eventService.DeleteEvent(eventId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

func (e *EventController) updateEventStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		status := repository.Status(strings.ToUpper(c.Query("status")))
		event, err := e.eventService.UpdateEventStatus(eventId, status)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toEventResponse(event))
	}
}

type EventCreate struct {
	Name                   string `json:"name" binding:"required"`
	Type                   string `json:"type" binding:"required"`
	MaxParticipantsPerTeam *int   `json:"max_participants_per_team"`
}

type EventResponse struct {
	Id                     int    `json:"id"`
	Name                   string `json:"name"`
	Type                   string `json:"type"`
	Status                 string `json:"status"`
	EditionId              int    `json:"edition_id"`
	MaxParticipantsPerTeam *int   `json:"max_participants_per_team"`
}

func (e *EventCreate) toModel() *repository.Event {
	return &repository.Event{
		Name:                   e.Name,
		Type:                   repository.EventType(e.Type),
		MaxParticipantsPerTeam: e.MaxParticipantsPerTeam,
	}
}

func toEventResponse(event *repository.Event) *EventResponse {
	return &EventResponse{
		Id:                     event.Id,
		Name:                   event.Name,
		Type:                   string(event.Type),
		Status:                 string(event.Status),
		EditionId:              event.EditionId,
		MaxParticipantsPerTeam: event.MaxParticipantsPerTeam,
	}
}
