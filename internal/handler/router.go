package handler

import (
	"github.com/gin-gonic/gin"
)

// Routes groups the handlers mounted by RegisterRoutes.
type Routes struct {
	Timetable *TimetableHandler
	Ops       *MetricsHandler
	// Session resolves the session id and must run before any Timetable handler.
	Session       gin.HandlerFunc
	EnableMetrics bool
}

// RegisterRoutes mounts the HTML pages, the JSON API and the operational endpoints.
func RegisterRoutes(r *gin.Engine, routes Routes) {
	r.SetHTMLTemplate(Templates())

	if routes.Ops != nil {
		r.GET("/health", routes.Ops.Health)
		r.GET("/ready", routes.Ops.Ready)
		if routes.EnableMetrics {
			r.GET("/metrics", routes.Ops.Prometheus)
		}
	}

	h := routes.Timetable
	pages := r.Group("/", routes.Session)
	pages.GET("/", h.Index)
	pages.POST("/", h.Submit)
	pages.GET("/delete/:index", h.Delete)
	pages.GET("/generate", h.Generate)

	api := r.Group("/api/v1", routes.Session)
	api.GET("/entries", h.ListEntries)
	api.POST("/entries", h.SaveEntry)
	api.DELETE("/entries/:index", h.DeleteEntry)
	api.GET("/timetable/preview", h.Preview)
}
