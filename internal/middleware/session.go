package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/logger"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

// SessionCookie configures the session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Session resolves the caller's session id from the signed cookie, starting a new session when the
// cookie is missing, expired or forged. The id is stored under logger.SessionIDKey.
func Session(tokens *service.SessionTokenService, cookie SessionCookie, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if raw, err := c.Cookie(cookie.Name); err == nil && raw != "" {
			if sessionID, err := tokens.Parse(raw); err == nil {
				c.Set(logger.SessionIDKey, sessionID)
				c.Next()
				return
			}
			log.Debug("discarding invalid session cookie", zap.String("ip", c.ClientIP()))
		}

		sessionID, token, err := tokens.NewSession()
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, token, int(tokens.TTL().Seconds()), "/", "", cookie.Secure, true)
		c.Set(logger.SessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session id attached by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(logger.SessionIDKey)
}
