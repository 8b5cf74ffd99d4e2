package controller

import (
	"strconv"
	"strings"
	"time"

	"cedupscore/app_error"
	"cedupscore/repository"
	"cedupscore/service"
	"cedupscore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EditionController struct {
	editionService *service.EditionService
}

func NewEditionController(db *gorm.DB) *EditionController {
	return &EditionController{
		editionService: service.NewEditionService(db),
	}
}

func setupEditionController(db *gorm.DB) []RouteInfo {
	e := NewEditionController(db)
	basePath := "editions"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: e.listEditionsHandler()},
		{Method: "GET", Path: "/from", HandlerFunc: e.findEditionByYearHandler()},
		{Method: "GET", Path: "/:id", HandlerFunc: e.getEditionHandler()},
		{Method: "POST", Path: "/open-edition", HandlerFunc: e.openEditionHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "DELETE", Path: "/:id", HandlerFunc: e.deleteEditionHandler(), Authenticated: true, RoleRequired: adminRoles},
		{Method: "PATCH", Path: "/:id/update", HandlerFunc: e.updateEditionStatusHandler(), Authenticated: true, RoleRequired: adminRoles},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func (e *EditionController) listEditionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		editions, err := e.editionService.FindAllEditions()
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(editions, toEditionResponse))
	}
}

func (e *EditionController) getEditionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		edition, err := e.editionService.GetEditionById(id)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toEditionResponse(edition))
	}
}

func (e *EditionController) findEditionByYearHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			c.JSON(400, gin.H{"error": "year query parameter is required"})
			return
		}
		edition, err := e.editionService.GetEditionByYear(year)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toEditionResponse(edition))
	}
}

func (e *EditionController) openEditionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		edition, err := e.editionService.OpenNewEdition()
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, toEditionResponse(edition))
	}
}

func (e *EditionController) deleteEditionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.editionService.DeleteEdition(id); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.Status(204)
	}
}

func (e *EditionController) updateEditionStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		status := repository.Status(strings.ToUpper(c.Query("status")))
		edition, err := e.editionService.UpdateEditionStatus(id, status)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, toEditionResponse(edition))
	}
}

type EditionResponse struct {
	Id        int       `json:"id"`
	Year      int       `json:"year"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toEditionResponse(edition *repository.Edition) *EditionResponse {
	return &EditionResponse{
		Id:        edition.Id,
		Year:      edition.Year,
		Status:    string(edition.Status),
		CreatedAt: edition.CreatedAt,
	}
}
