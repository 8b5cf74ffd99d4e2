package controller

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/service"
	"cedupscore/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var scorekeeperRoles = append(adminRoles, string(repository.PermissionScorekeeper))

type ScoreController struct {
	scoreService *service.ScoreService
	mu           sync.Mutex
	connections  map[int]map[*websocket.Conn]bool
}

func NewScoreController(db *gorm.DB) *ScoreController {
	return &ScoreController{
		scoreService: service.NewScoreService(db),
		connections:  make(map[int]map[*websocket.Conn]bool),
	}
}

func setupScoreController(db *gorm.DB) []RouteInfo {
	e := NewScoreController(db)
	routes := []RouteInfo{
		{Method: "GET", Path: "editions/:id/scoreboard", HandlerFunc: e.getScoreboardHandler(), CacheFor: 10 * time.Second},
		{Method: "GET", Path: "editions/:id/scoreboard/ws", HandlerFunc: e.scoreboardWebSocketHandler},
		{Method: "GET", Path: "events/:event_id/scores", HandlerFunc: e.getEventScoresHandler()},
		{Method: "PUT", Path: "editions/:id/scoreboard/:team_id", HandlerFunc: e.upsertTeamScoreHandler(), Authenticated: true, RoleRequired: scorekeeperRoles},
		{Method: "PUT", Path: "events/:event_id/scores/:team_id", HandlerFunc: e.upsertEventScoreHandler(), Authenticated: true, RoleRequired: scorekeeperRoles},
	}
	return routes
}

func (e *ScoreController) getScoreboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		editionId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		scores, err := e.scoreService.GetScoreboard(editionId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(scores, toTeamScoreResponse))
	}
}

func (e *ScoreController) getEventScoresHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		scores, err := e.scoreService.GetEventScores(eventId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(scores, toEventScoreResponse))
	}
}

func (e *ScoreController) upsertTeamScoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		editionId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var request TeamScoreUpdate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		score, err := e.scoreService.UpsertTeamScore(editionId, teamId, request.Score, request.TasksWon, request.SportsWon)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		e.broadcastScoreboard(editionId)
		c.JSON(200, toTeamScoreResponse(score))
	}
}

func (e *ScoreController) upsertEventScoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventId, err := strconv.Atoi(c.Param("event_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var request EventScoreUpdate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		score, err := e.scoreService.UpsertEventScore(eventId, teamId, request.Score)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toEventScoreResponse(score))
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// allow any host origin to connect to the websocket
		return true
	},
}

// @id ScoreboardWebSocket
// @Description Websocket for scoreboard updates. Once connected, the client
// @Description receives the scoreboard again whenever a team score changes.
// @Tags scores
// @Router /editions/{id}/scoreboard/ws [get]
// @Param id path int true "Edition Id"
func (e *ScoreController) scoreboardWebSocketHandler(c *gin.Context) {
	editionId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	scores, err := e.scoreService.GetScoreboard(editionId)
	if err != nil {
		app_error.Respond(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		http.NotFound(c.Writer, c.Request)
		return
	}
	defer conn.Close()

	// Send the current scoreboard to the new subscriber
	if err := conn.WriteJSON(utils.Map(scores, toTeamScoreResponse)); err != nil {
		return
	}

	e.mu.Lock()
	if _, ok := e.connections[editionId]; !ok {
		e.connections[editionId] = make(map[*websocket.Conn]bool)
	}
	e.connections[editionId][conn] = true
	e.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			e.mu.Lock()
			delete(e.connections[editionId], conn)
			if len(e.connections[editionId]) == 0 {
				delete(e.connections, editionId)
			}
			e.mu.Unlock()
			return
		}
	}
}

func (e *ScoreController) broadcastScoreboard(editionId int) {
	e.mu.Lock()
	subscribers := make([]*websocket.Conn, 0, len(e.connections[editionId]))
	for conn := range e.connections[editionId] {
		subscribers = append(subscribers, conn)
	}
	e.mu.Unlock()
	if len(subscribers) == 0 {
		return
	}
	scores, err := e.scoreService.GetScoreboard(editionId)
	if err != nil {
		return
	}
	response := utils.Map(scores, toTeamScoreResponse)
	for _, conn := range subscribers {
		if err := conn.WriteJSON(response); err != nil {
			e.mu.Lock()
			delete(e.connections[editionId], conn)
			e.mu.Unlock()
		}
	}
}

type TeamScoreUpdate struct {
	Score     int `json:"score"`
	TasksWon  int `json:"tasks_won"`
	SportsWon int `json:"sports_won"`
}

type EventScoreUpdate struct {
	Score int `json:"score"`
}

type TeamScoreResponse struct {
	TeamId    int           `json:"team_id"`
	Team      *TeamResponse `json:"team,omitempty"`
	EditionId int           `json:"edition_id"`
	Score     int           `json:"score"`
	TasksWon  int           `json:"tasks_won"`
	SportsWon int           `json:"sports_won"`
}

type EventScoreResponse struct {
	TeamId  int           `json:"team_id"`
	Team    *TeamResponse `json:"team,omitempty"`
	EventId int           `json:"event_id"`
	Score   int           `json:"score"`
}

func toTeamScoreResponse(score *repository.TeamScore) *TeamScoreResponse {
	response := &TeamScoreResponse{
		TeamId:    score.TeamId,
		EditionId: score.EditionId,
		Score:     score.Score,
		TasksWon:  score.TasksWon,
		SportsWon: score.SportsWon,
	}
	if score.Team != nil {
		response.Team = toTeamResponse(score.Team)
	}
	return response
}

func toEventScoreResponse(score *repository.EventScore) *EventScoreResponse {
	response := &EventScoreResponse{
		TeamId:  score.TeamId,
		EventId: score.EventId,
		Score:   score.Score,
	}
	if score.Team != nil {
		response.Team = toTeamResponse(score.Team)
	}
	return response
}
