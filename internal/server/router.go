// Package server assembles the gin router: middleware, route groups, and
// handler wiring.
package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	healthhandler "workspace-control-plane/backend/internal/health/handler"
	identityhandler "workspace-control-plane/backend/internal/identity/handler"
	identityservice "workspace-control-plane/backend/internal/identity/service"
	invitationhandler "workspace-control-plane/backend/internal/invitation/handler"
	invitationservice "workspace-control-plane/backend/internal/invitation/service"
	memberhandler "workspace-control-plane/backend/internal/member/handler"
	memberservice "workspace-control-plane/backend/internal/member/service"
	rolehandler "workspace-control-plane/backend/internal/role/handler"
	rolerepo "workspace-control-plane/backend/internal/role/repository"
	"workspace-control-plane/backend/internal/security"
	"workspace-control-plane/backend/internal/server/middleware"
)

// Deps holds the services the router exposes. Nil entries disable their
// routes; Tokens is required for the protected group.
type Deps struct {
	ServiceName string
	Tokens      *security.TokenProvider
	Auth        *identityservice.AuthService
	Invitations *invitationservice.Service
	Members     *memberservice.Service
	Roles       rolerepo.Repository
	// HealthPinger is used for readiness (e.g. *sql.DB). If nil, the health
	// endpoint skips the DB check.
	HealthPinger healthhandler.Pinger
}

// New builds the gin engine with otel instrumentation and all routes.
func New(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(deps.ServiceName))
	router.Use(middleware.ClientIP())

	router.GET("/health", healthhandler.NewHandler(deps.HealthPinger).Check)

	if deps.Auth != nil {
		authHandler := identityhandler.NewAuthHandler(deps.Auth)
		auth := router.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}
	}

	v1 := router.Group("/api/v1", middleware.RequireAuth(deps.Tokens))
	{
		if deps.Invitations != nil && deps.Members != nil {
			invHandler := invitationhandler.NewHandler(deps.Invitations, deps.Members)
			invitations := v1.Group("/invitations")
			{
				invitations.POST("", invHandler.Create)
				invitations.GET("", invHandler.List)
				invitations.POST("/:token/accept", invHandler.Accept)
				invitations.DELETE("/:token", invHandler.Revoke)
			}
		}

		if deps.Members != nil {
			mHandler := memberhandler.NewHandler(deps.Members)
			v1.GET("/organizations/:id/members", mHandler.ListOrgMembers)
			v1.GET("/me/memberships", mHandler.MyMemberships)
		}

		if deps.Roles != nil {
			v1.GET("/roles", rolehandler.NewHandler(deps.Roles).List)
		}
	}

	return router
}
