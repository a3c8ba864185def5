package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/middleware"
)

// API bundles every handler the server exposes.
type API struct {
	Health      *HealthHandler
	Folders     *FolderHandler
	Links       *LinkHandler
	Intake      *IntakeHandler
	Properties  *PropertyHandler
	Visits      *VisitHandler
	Documents   *DocumentHandler
	Itineraries *ItineraryHandler
	Address     *AddressHandler
}

// Register mounts the routes on router. Everything under /api/v1 except
// info and itinerary resolution requires a user.
func (a *API) Register(router *gin.Engine) {
	router.GET("/health", a.Health.Health)
	router.GET("/health/ready", a.Health.Ready)

	v1 := router.Group("/api/v1")
	v1.GET("/info", a.Health.Info)
	v1.GET("/itineraries/:token", a.Itineraries.Resolve)

	authed := v1.Group("")
	authed.Use(middleware.RequireUser())
	{
		authed.GET("/dashboard", a.Properties.Dashboard)

		folders := authed.Group("/folders")
		{
			folders.GET("", a.Folders.List)
			folders.POST("", a.Folders.Create)
			folders.GET("/:id", a.Folders.Get)
			folders.PATCH("/:id", a.Folders.Update)
			folders.DELETE("/:id", a.Folders.Delete)
			folders.POST("/:id/shares", a.Folders.Share)
		}

		links := authed.Group("/links")
		{
			links.GET("", a.Links.List)
			links.POST("", a.Links.Submit)
			links.DELETE("/:id", a.Links.Discard)
		}

		sessions := authed.Group("/intake/sessions")
		{
			sessions.POST("", a.Intake.Start)
			sessions.GET("/:id", a.Intake.Get)
			sessions.PATCH("/:id/draft", a.Intake.Edit)
			sessions.POST("/:id/commit", a.Intake.Commit)
			sessions.DELETE("/:id", a.Intake.Abandon)
		}

		properties := authed.Group("/properties")
		{
			properties.GET("", a.Properties.List)
			properties.POST("", a.Properties.Create)
			properties.GET("/:id", a.Properties.Get)
			properties.PUT("/:id", a.Properties.Update)
			properties.PATCH("/:id/status", a.Properties.UpdateStatus)
			properties.PUT("/:id/renovations", a.Properties.UpdateRenovations)
			properties.DELETE("/:id", a.Properties.Delete)
		}

		visits := authed.Group("/visits")
		{
			visits.GET("", a.Visits.List)
			visits.POST("", a.Visits.Schedule)
			visits.GET("/:id", a.Visits.Get)
			visits.PATCH("/:id", a.Visits.Update)
			visits.DELETE("/:id", a.Visits.Delete)
			visits.POST("/:id/complete", a.Visits.Complete)
		}

		documents := authed.Group("/documents")
		{
			documents.GET("", a.Documents.List)
			documents.POST("", a.Documents.Create)
			documents.DELETE("/:id", a.Documents.Delete)
		}

		authed.POST("/itineraries", a.Itineraries.Create)
		authed.GET("/address/validate", a.Address.Validate)
	}
}
