package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/printshop-backend/internal/platform/ctxutil"
)

// AttachRequestContext gives every request an empty RequestData for the auth
// and profile middleware to fill in.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := ctxutil.EnsureRequestData(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
