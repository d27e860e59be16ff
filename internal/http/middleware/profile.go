package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/printshop-backend/internal/platform/ctxutil"
)

const ProfileCookieName = "printshop_profile"

type ProfileConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// BrowserProfile identifies the browser profile from its cookie, issuing a
// fresh id when the cookie is missing or malformed.
func BrowserProfile(cfg ProfileConfig) gin.HandlerFunc {
	name := cfg.CookieName
	if name == "" {
		name = ProfileCookieName
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}
	return func(c *gin.Context) {
		profileID := ""
		if raw, err := c.Cookie(name); err == nil {
			if id, perr := uuid.Parse(strings.TrimSpace(raw)); perr == nil {
				profileID = id.String()
			}
		}
		if profileID == "" {
			profileID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, profileID, int(maxAge.Seconds()), "/", "", cfg.Secure, true)
		}

		ctx, rd := ctxutil.EnsureRequestData(c.Request.Context())
		rd.ProfileID = profileID
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
