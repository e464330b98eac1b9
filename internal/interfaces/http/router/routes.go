package router

import (
	"github.com/freightdesk/backend/internal/interfaces/http/handler"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers the API exposes
type Handlers struct {
	System    *handler.SystemHandler
	Shipments *handler.ShipmentHandler
	Uploads   *handler.UploadHandler
	Reconcile *handler.ReconcileHandler
	Overrides *handler.OverrideHandler
}

// BuildRoutes assembles the domain route groups for the AP API.
// Mutating operations carry explicit permission requirements; reads only
// need an authenticated token.
func BuildRoutes(h Handlers) []RouteRegistrar {
	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	shipments := NewDomainGroup("shipments", "/shipments")
	shipments.GET("/:ref", h.Shipments.Get)
	shipments.POST("/:ref/costs", middleware.RequirePermission("ap:apply"), h.Shipments.ApplyCosts)
	shipments.DELETE("/:ref/costs", middleware.RequirePermission("ap:unapply"), h.Shipments.UnapplyCosts)

	ap := NewDomainGroup("ap", "/ap")
	uploads := ap.Group("uploads", "/uploads")
	uploads.GET("", h.Uploads.List)
	uploads.POST("", middleware.RequirePermission("ap:upload"), h.Uploads.Create)
	uploads.GET("/:id", h.Uploads.Get)
	uploads.POST("/:id/process", middleware.RequirePermission("ap:process"), h.Uploads.Process)
	ap.POST("/reconcile", middleware.RequirePermission("ap:reconcile"), h.Reconcile.Reconcile)
	ap.POST("/overrides", middleware.RequirePermission("ap:override"), h.Overrides.Override)

	return []RouteRegistrar{system, shipments, ap}
}
