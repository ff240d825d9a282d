package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/middleware"
	"github.com/noah-isme/blood-donation-api/internal/models"
)

// Handlers bundles every HTTP handler mounted under the API prefix. Documents is nil
// when result documents live in S3 and are served by presigned URLs.
type Handlers struct {
	Auth           *AuthHandler
	Donors         *DonorHandler
	Hospitals      *HospitalHandler
	HospitalAdmins *HospitalAdminHandler
	Managers       *ManagerHandler
	Appointments   *SessionHandler
	Evaluations    *SessionHandler
	Inventory      *InventoryHandler
	Emergencies    *EmergencyHandler
	Feedback       *FeedbackHandler
	Inquiries      *InquiryHandler
	Reports        *ReportHandler
	Documents      *DocumentHandler
}

// RegisterRoutes mounts the API. authenticate must reject requests without a valid
// access token; fine grained authorization happens in the services.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, authenticate gin.HandlerFunc) {
	api.Use(middleware.AuditContext(), middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", authenticate, h.Auth.Logout)
	auth.GET("/me", authenticate, h.Auth.Me)

	// Public endpoints carry their own credentials (signed tokens) or none at all.
	api.POST("/donor", h.Donors.Register)
	api.GET("/export/:token", h.Reports.Download)
	if h.Documents != nil {
		api.GET("/documents/:token", h.Documents.Download)
	}

	secured := api.Group("", authenticate)

	donors := secured.Group("/donor")
	donors.GET("", h.Donors.List)
	donors.GET("/:id", h.Donors.Get)
	donors.PUT("/:id", h.Donors.Update)
	donors.DELETE("/:id", h.Donors.Delete)

	hospitals := secured.Group("/hospital")
	hospitals.GET("", h.Hospitals.List)
	hospitals.GET("/:id", h.Hospitals.Get)
	hospitals.PUT("/:id", h.Hospitals.Update)
	hospitals.POST("", middleware.RequireRoles(models.RoleManager), h.Hospitals.Create)
	hospitals.PATCH("/toggle-status", middleware.RequireRoles(models.RoleManager), h.Hospitals.ToggleStatus)

	admins := secured.Group("/hospitaladmins", middleware.RequireRoles(models.RoleHospital, models.RoleHospitalAdmin, models.RoleManager))
	admins.GET("", h.HospitalAdmins.List)
	admins.GET("/:id", h.HospitalAdmins.Get)
	admins.POST("", h.HospitalAdmins.Create)
	admins.PUT("/:id", h.HospitalAdmins.Update)
	admins.DELETE("/:id", h.HospitalAdmins.Delete)

	managers := secured.Group("/manager", middleware.RequireRoles(models.RoleManager))
	managers.GET("", h.Managers.List)
	managers.GET("/:id", h.Managers.Get)
	managers.POST("", h.Managers.Create)
	managers.PUT("/:id", h.Managers.Update)
	managers.PATCH("/toggle-status", h.Managers.ToggleStatus)

	registerSessionRoutes(secured.Group("/blooddonationappointment"), h.Appointments)
	registerSessionRoutes(secured.Group("/healthEvaluation"), h.Evaluations)

	inventory := secured.Group("/blood-inventory")
	inventory.GET("", h.Inventory.List)
	inventory.GET("/summary", h.Inventory.Summary)
	inventory.GET("/:id", h.Inventory.Get)
	inventory.POST("", h.Inventory.Create)
	inventory.PUT("/:id", h.Inventory.Update)
	inventory.DELETE("/:id", h.Inventory.Delete)
	inventory.PATCH("/toggle-expired/:id", h.Inventory.ToggleExpired)

	emergencies := secured.Group("/emergencyBR")
	emergencies.GET("", h.Emergencies.List)
	emergencies.GET("/:id", h.Emergencies.Get)
	emergencies.POST("", h.Emergencies.Create)
	emergencies.PATCH("/:id/validate", h.Emergencies.Validate)
	emergencies.PATCH("/:id/accept", h.Emergencies.Accept)
	emergencies.PATCH("/:id/decline", h.Emergencies.Decline)
	emergencies.DELETE("/:id", h.Emergencies.Delete)

	feedback := secured.Group("/feedback")
	feedback.GET("", h.Feedback.List)
	feedback.GET("/:id", h.Feedback.Get)
	feedback.POST("", h.Feedback.Create)
	feedback.PATCH("/:id/review", h.Feedback.Review)
	feedback.DELETE("/:id", h.Feedback.Delete)

	inquiries := secured.Group("/inquiry")
	inquiries.GET("", h.Inquiries.List)
	inquiries.GET("/:id", h.Inquiries.Get)
	inquiries.POST("", h.Inquiries.Create)
	inquiries.PATCH("/:id/status", h.Inquiries.UpdateStatus)
	inquiries.DELETE("/:id", h.Inquiries.Delete)

	reports := secured.Group("/reports", middleware.RequireRoles(models.RoleHospital, models.RoleHospitalAdmin, models.RoleManager))
	reports.POST("/generate", h.Reports.Generate)
	reports.GET("/status/:id", h.Reports.Status)
}

func registerSessionRoutes(group *gin.RouterGroup, h *SessionHandler) {
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PUT("/:id", h.Reschedule)
	group.PATCH("/:id/accept", h.Accept)
	group.PATCH("/:id/cancel", h.Cancel)
	group.PATCH("/:id/cancelD", h.CancelByDonor)
	group.PATCH("/:id/arrived", h.Arrive)
	group.PATCH("/:id/complete", h.Complete)
	group.DELETE("/:id", h.Delete)
}
