package routes

import (
	"github.com/gin-gonic/gin"

	"go-hazardwatch/auth"
	"go-hazardwatch/handlers"
	"go-hazardwatch/lifecycle"
	"go-hazardwatch/mlmodel"
	"go-hazardwatch/store"
	"go-hazardwatch/uploads"
)

// SetupRouter wires the report pipeline onto a gin engine. Reads are
// public; intake requires any authenticated identity; status transitions
// additionally require the authority or admin role (checked in the
// lifecycle manager).
func SetupRouter(st store.Store, classifier mlmodel.Classifier, up *uploads.Storage, manager *lifecycle.Manager, verifier *auth.Verifier) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", handlers.Healthz)

	// Uploaded report photos, referenced from reports by blob name.
	r.Static("/uploads", up.Dir())

	api := r.Group("/api/reports")
	{
		api.GET("", func(c *gin.Context) {
			handlers.ListReports(c, st)
		})
		api.GET("/authentic", func(c *gin.Context) {
			handlers.AuthenticReports(c, st)
		})
		api.GET("/real", func(c *gin.Context) {
			handlers.RealReports(c, st)
		})
		api.GET("/:id", func(c *gin.Context) {
			handlers.GetReport(c, st)
		})

		api.POST("", verifier.Middleware(), func(c *gin.Context) {
			handlers.CreateReport(c, st, classifier, up)
		})
		api.PUT("/:id/status", verifier.Middleware(), func(c *gin.Context) {
			handlers.UpdateStatus(c, manager)
		})
	}

	return r
}
