package controller

import (
	"strconv"
	"time"

	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/service"
	"cedupscore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var adminRoles = []string{
	string(repository.PermissionSuperAdmin),
	string(repository.PermissionEditionAdmin),
}

type ParticipantController struct {
	participantService *service.ParticipantService
	csvService         *service.ParticipantCSVService
}

func NewParticipantController(db *gorm.DB) *ParticipantController {
	return &ParticipantController{
		participantService: service.NewParticipantService(db),
		csvService:         service.NewParticipantCSVService(db),
	}
}

func setupParticipantController(db *gorm.DB) []RouteInfo {
	e := NewParticipantController(db)
	basePath := "participants"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.listParticipantsHandler()},
		{Method: "GET", Path: "/find", HandlerFunc: e.findParticipantByCpfHandler()},
		{Method: "GET", Path: "/:id", HandlerFunc: e.getParticipantHandler()},
		{Method: "POST", Path: "", HandlerFunc: e.createParticipantHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "PUT", Path: "/:id", HandlerFunc: e.replaceParticipantHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "DELETE", Path: "/:id", HandlerFunc: e.deleteParticipantHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "PATCH", Path: "/:id/set", HandlerFunc: e.setParticipantActiveHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "POST", Path: "/:id/register-in-edition/:edition_id", HandlerFunc: e.registerInEditionHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "POST", Path: "/:id/register-in-event/:event_id", HandlerFunc: e.registerInEventHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "POST", Path: "/register-all-in-event/:event_id", HandlerFunc: e.registerAllInEventHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "DELETE", Path: "/:id/edition-registrations/:registration_id", HandlerFunc: e.deleteEditionRegistrationHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "DELETE", Path: "/:id/event-registrations/:registration_id", HandlerFunc: e.deleteEventRegistrationHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "DELETE", Path: "/event-registrations/:event_id", HandlerFunc: e.deleteAllEventRegistrationsHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "POST", Path: "/upload/registration-csv", HandlerFunc: e.uploadRegistrationCSVHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "POST", Path: "/upload/inactivation-csv", HandlerFunc: e.uploadInactivationCSVHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "POST", Path: "/generate/csv", HandlerFunc: e.generateCSVHandler(), Authenticated: true, RoleRequired: adminRoles},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

// @id ListParticipants
// @Description Lists participants filtered by the given query parameters.
// @Tags participants
// @Router /participants [get]
// @Success 200 {object} PageResponse[ParticipantResponse]
func (e *ParticipantController) listParticipantsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := &repository.ParticipantFilter{
			Name:         c.Query("name"),
			EditionId:    queryInt(c, "edition"),
			EventId:      queryInt(c, "event"),
			NotInEventId: queryInt(c, "not-in-event"),
			TeamId:       queryInt(c, "team"),
			Gender:       repository.Gender(c.Query("gender")),
			Type:         repository.ParticipantType(c.Query("type")),
			Status:       c.Query("status"),
			SortOrder:    c.Query("order"),
		}
		limit := queryIntDefault(c, "limit", 20)
		offset := queryIntDefault(c, "offset", 0)
		participants, total, err := e.participantService.FindAllParticipants(filter, limit, offset)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, PageResponse[*ParticipantResponse]{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			Content: utils.Map(participants, toParticipantResponse),
		})
	}
}

func (e *ParticipantController) getParticipantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		participant, err := e.participantService.GetParticipantById(id)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toParticipantResponse(participant))
	}
}

func (e *ParticipantController) findParticipantByCpfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		participant, err := e.participantService.GetParticipantByCpf(c.Query("cpf"))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toParticipantResponse(participant))
	}
}

// @id CreateParticipant
// @Description Creates a participant and registers them in the open edition.
// @Tags participants
// @Router /participants [post]
// @Security BearerAuth
// @Success 201 {object} ParticipantResponse
func (e *ParticipantController) createParticipantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request ParticipantCreate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		participant, err := e.participantService.SaveParticipant(request.toModel(), request.TeamId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toParticipantResponse(participant))
	}
}

func (e *ParticipantController) replaceParticipantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var request ParticipantUpdate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		participant, err := e.participantService.ReplaceParticipant(id, request.toModel())
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toParticipantResponse(participant))
	}
}

func (e *ParticipantController) deleteParticipantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.participantService.DeleteParticipant(id); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

func (e *ParticipantController) setParticipantActiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		isActive, err := strconv.ParseBool(c.Query("is-active"))
		if err != nil {
			c.JSON(400, gin.H{"error": "is-active must be true or false"})
			return
		}
		participant, err := e.participantService.SetParticipantActive(id, isActive)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toParticipantResponse(participant))
	}
}

// @id RegisterInEdition
// @Description Registers a participant with a team for an edition. A prior
// @Description registration for the same edition is replaced.
// @Tags participants
// @Router /participants/{id}/register-in-edition/{edition_id} [post]
// @Security BearerAuth
// @Success 201 {object} ParticipantResponse
func (e *ParticipantController) registerInEditionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		editionId, err := strconv.Atoi(c.Param("edition_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		teamId, err := strconv.Atoi(c.Query("team"))
		if err != nil {
			c.JSON(400, gin.H{"error": "team query parameter is required"})
			return
		}
		participant, err := e.participantService.GetParticipantById(id)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		registered, err := e.participantService.RegisterParticipantInEdition(participant, editionId, teamId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toParticipantResponse(registered))
	}
}

func (e *ParticipantController) registerInEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		teamId, err := strconv.Atoi(c.Query("team"))
		if err != nil {
			c.JSON(400, gin.H{"error": "team query parameter is required"})
			return
		}
		participant, err := e.participantService.GetParticipantById(id)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		registered, err := e.participantService.RegisterParticipantInEvent(participant, eventId, teamId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toParticipantResponse(registered))
	}
}

// @id RegisterAllInEvent
// @Description Registers a batch of participants for one event. Rule
// @Description rejections are reported per item; unresolved ids abort the batch.
// @Tags participants
// @Router /participants/register-all-in-event/{event_id} [post]
// @Security BearerAuth
// @Success 200 {object} BulkRegistrationResponse
func (e *ParticipantController) registerAllInEventHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var requests []EventRegistrationCreate
		if err := c.BindJSON(&requests); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		registered, failures, err := e.participantService.RegisterAllParticipantsInEvent(
			utils.Map(requests, eventRegistrationCreateToModel), eventId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, BulkRegistrationResponse{
			Registered: utils.Map(registered, toParticipantResponse),
			Failures:   utils.Map(failures, toRegistrationFailureResponse),
		})
	}
}

func (e *ParticipantController) deleteEditionRegistrationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		registrationId, err := strconv.Atoi(c.Param("registration_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if _, err := e.participantService.DeleteEditionRegistration(id, registrationId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

func (e *ParticipantController) deleteEventRegistrationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		registrationId, err := strconv.Atoi(c.Param("registration_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if _, err := e.participantService.DeleteEventRegistration(id, registrationId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

func (e *ParticipantController) deleteAllEventRegistrationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var registrationIds []int
		if err := c.BindJSON(&registrationIds); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.participantService.DeleteAllEventRegistrations(eventId, registrationIds); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

func (e *ParticipantController) uploadRegistrationCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(400, gin.H{"error": "file is required"})
			return
		}
		reader, err := file.Open()
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		defer reader.Close()
		records, err := service.ParseParticipantRecords(reader)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, e.csvService.RegisterParticipants(records))
	}
}

func (e *ParticipantController) uploadInactivationCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(400, gin.H{"error": "file is required"})
			return
		}
		reader, err := file.Open()
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		defer reader.Close()
		records, err := service.ParseCpfRecords(reader)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, e.csvService.InactivateParticipants(records))
	}
}

func (e *ParticipantController) generateCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var requests []ParticipantUpdate
		if err := c.BindJSON(&requests); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		csvBytes, err := service.GenerateParticipantsCSV(utils.Map(requests, func(r ParticipantUpdate) *repository.Participant {
			return r.toModel()
		}))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="participants.csv"`)
		c.Data(201, "application/octet-stream", csvBytes)
	}
}

type ParticipantCreate struct {
	Name   string `json:"name" binding:"required"`
	Cpf    string `json:"cpf" binding:"required"`
	Gender string `json:"gender" binding:"required"`
	Type   string `json:"type" binding:"required"`
	TeamId int    `json:"team_id" binding:"required"`
}

type ParticipantUpdate struct {
	Name   string `json:"name" binding:"required"`
	Cpf    string `json:"cpf" binding:"required"`
	Gender string `json:"gender" binding:"required"`
	Type   string `json:"type" binding:"required"`
}

type EventRegistrationCreate struct {
	ParticipantId int `json:"participant_id" binding:"required"`
	TeamId        int `json:"team_id" binding:"required"`
}

type EditionRegistrationResponse struct {
	Id        int           `json:"id"`
	EditionId int           `json:"edition_id"`
	Team      *TeamResponse `json:"team"`
	CreatedAt time.Time     `json:"created_at"`
}

type ParticipantResponse struct {
	Id            int                            `json:"id"`
	Name          string                         `json:"name"`
	Cpf           string                         `json:"cpf"`
	Gender        string                         `json:"gender"`
	Type          string                         `json:"type"`
	IsActive      bool                           `json:"is_active"`
	Registrations []*EditionRegistrationResponse `json:"registrations"`
}

type RegistrationFailureResponse struct {
	ParticipantId int    `json:"participant_id"`
	TeamId        int    `json:"team_id"`
	Kind          string `json:"kind"`
	Message       string `json:"message"`
}

type BulkRegistrationResponse struct {
	Registered []*ParticipantResponse        `json:"registered"`
	Failures   []RegistrationFailureResponse `json:"failures"`
}

type PageResponse[T any] struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Content []T   `json:"content"`
}

func (e *ParticipantCreate) toModel() *repository.Participant {
	return &repository.Participant{
		Name:   e.Name,
		Cpf:    e.Cpf,
		Gender: repository.Gender(e.Gender),
		Type:   repository.ParticipantType(e.Type),
	}
}

func (e ParticipantUpdate) toModel() *repository.Participant {
	return &repository.Participant{
		Name:   e.Name,
		Cpf:    e.Cpf,
		Gender: repository.Gender(e.Gender),
		Type:   repository.ParticipantType(e.Type),
	}
}

func eventRegistrationCreateToModel(request EventRegistrationCreate) service.EventRegistrationRequest {
	return service.EventRegistrationRequest{
		ParticipantId: request.ParticipantId,
		TeamId:        request.TeamId,
	}
}

func toParticipantResponse(participant *repository.Participant) *ParticipantResponse {
	return &ParticipantResponse{
		Id:       participant.Id,
		Name:     participant.Name,
		Cpf:      participant.Cpf,
		Gender:   string(participant.Gender),
		Type:     string(participant.Type),
		IsActive: participant.IsActive,
		Registrations: utils.Map(participant.EditionRegistrations, func(registration *repository.EditionRegistration) *EditionRegistrationResponse {
			response := &EditionRegistrationResponse{
				Id:        registration.Id,
				EditionId: registration.EditionId,
				CreatedAt: registration.CreatedAt,
			}
			if registration.Team != nil {
				response.Team = toTeamResponse(registration.Team)
			}
			return response
		}),
	}
}

func toRegistrationFailureResponse(failure service.RegistrationFailure) RegistrationFailureResponse {
	return RegistrationFailureResponse{
		ParticipantId: failure.ParticipantId,
		TeamId:        failure.TeamId,
		Kind:          string(failure.Kind),
		Message:       failure.Message,
	}
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}

func queryIntDefault(c *gin.Context, key string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	return value
}
