package controller

import (
	"strings"
	"time"

	"cedupscore/auth"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RouteInfo struct {
	Method        string
	Path          string
	HandlerFunc   gin.HandlerFunc
	Authenticated bool
	RoleRequired  []string
	CacheFor      time.Duration
}

func SetRoutes(r *gin.Engine, db *gorm.DB, cacheStore persistence.CacheStore) {
	routes := make([]RouteInfo, 0)
	routes = append(routes, setupParticipantController(db)...)
	routes = append(routes, setupTeamController(db)...)
	routes = append(routes, setupEditionController(db)...)
	routes = append(routes, setupEventController(db)...)
	routes = append(routes, setupScoreController(db)...)
	routes = append(routes, setupUserController(db)...)
	group := r.Group("/api/v1")
	for _, route := range routes {
		handlerfuncs := make([]gin.HandlerFunc, 0)
		if route.Authenticated {
			handlerfuncs = append(handlerfuncs, AuthMiddleware(route.RoleRequired))
		}
		handler := route.HandlerFunc
		if route.CacheFor > 0 {
			handler = cache.CachePage(cacheStore, route.CacheFor, handler)
		}
		handlerfuncs = append(handlerfuncs, handler)
		group.Handle(route.Method, route.Path, handlerfuncs...)
	}
}

func AuthMiddleware(roles []string) gin.HandlerFunc {
	return func(r *gin.Context) {
		authHeader := r.Request.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			r.JSON(401, gin.H{"error": "Unauthenticated"})
			r.Abort()
			return
		}
		token, err := auth.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || !token.Valid {
			r.JSON(401, gin.H{"error": "Unauthenticated"})
			r.Abort()
			return
		}
		claims := &auth.Claims{}
		claims.FromJWTClaims(token.Claims)
		if err := claims.Valid(); err != nil {
			r.JSON(401, gin.H{"error": "Unauthenticated"})
			r.Abort()
			return
		}
		if len(roles) == 0 {
			r.Next()
			return
		}

		for _, requiredRole := range roles {
			for _, userRole := range claims.Permissions {
				if requiredRole == userRole {
					r.Next()
					return
				}
			}
		}
		r.JSON(403, gin.H{"error": "Unauthorized"})
		r.Abort()
	}
}
