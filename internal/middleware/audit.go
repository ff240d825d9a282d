package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blood-donation-api/internal/models"
	"github.com/noah-isme/blood-donation-api/internal/service"
)

// AuditContext copies the client address and user agent into the request context so
// services can stamp them on audit log entries.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.ContextWithRequestMeta(c.Request.Context(), models.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
