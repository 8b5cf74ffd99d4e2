package controller

import (
	"strconv"

	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/service"
	"cedupscore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TeamController struct {
	teamService *service.TeamService
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{
		teamService: service.NewTeamService(db),
	}
}

func setupTeamController(db *gorm.DB) []RouteInfo {
	e := NewTeamController(db)
	basePath := "teams"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.getTeamsHandler()},
		{Method: "GET", Path: "/:team_id", HandlerFunc: e.getTeamHandler()},
		{Method: "POST", Path: "", HandlerFunc: e.createTeamHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "PUT", Path: "/:team_id", HandlerFunc: e.replaceTeamHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "DELETE", Path: "/:team_id", HandlerFunc: e.deleteTeamHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "PATCH", Path: "/:team_id/set", HandlerFunc: e.setTeamActiveHandler(), Authenticated: true, RoleRequired: adminRoles},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func (e *TeamController) getTeamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var teams []*repository.Team
		var err error
		if c.Query("status") == "active" {
			teams, err = e.teamService.FindAllActiveTeams()
		} else {
			teams, err = e.teamService.FindAllTeams()
		}
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(teams, toTeamResponse))
	}
}

func (e *TeamController) getTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.GetTeamById(teamId)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTeamResponse(team))
	}
}

func (e *TeamController) createTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request TeamCreate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.SaveTeam(request.toModel())
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toTeamResponse(team))
	}
}

func (e *TeamController) replaceTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var request TeamCreate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		team, err := e.teamService.ReplaceTeam(teamId, request.toModel())
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTeamResponse(team))
	}
}

func (e *TeamController) deleteTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.teamService.DeleteTeam(teamId); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

func (e *TeamController) setTeamActiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamId, err := strconv.Atoi(c.Param("team_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		isActive, err := strconv.ParseBool(c.Query("is-active"))
		if err != nil {
			c.JSON(400, gin.H{"error": "is-active must be true or false"})
			return
		}
		team, err := e.teamService.SetTeamActive(teamId, isActive)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toTeamResponse(team))
	}
}

type TeamCreate struct {
	Name    string `json:"name" binding:"required"`
	LogoUrl string `json:"logo_url" binding:"required"`
}

type TeamResponse struct {
	Id       int    `json:"id"`
	Name     string `json:"name"`
	LogoUrl  string `json:"logo_url"`
	IsActive bool   `json:"is_active"`
}

func (e *TeamCreate) toModel() *repository.Team {
	return &repository.Team{
		Name:    e.Name,
		LogoUrl: e.LogoUrl,
	}
}

func toTeamResponse(team *repository.Team) *TeamResponse {
	return &TeamResponse{
		Id:       team.Id,
		Name:     team.Name,
		LogoUrl:  team.LogoUrl,
		IsActive: team.IsActive,
	}
}
