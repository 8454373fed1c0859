package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/nextdevhq/storefront/internal/observability/context"
	"go.uber.org/zap"
)

const (
	contextUserIDKey  = "user_id"
	sessionCookieName = "storefront_session"
)

// AuthRequired resolves the caller's session before any purchase endpoint
// runs. The user identity is always taken from the session, never from the
// request body.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			if cookie, err := c.Cookie(sessionCookieName); err == nil {
				raw = strings.TrimSpace(cookie)
			}
		}
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID)
		ctx := obscontext.WithUserID(c.Request.Context(), session.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

// RateLimited gates a route on the payments limiter. A nil or disabled
// limiter allows everything.
func (s *Server) RateLimited(allow func(c *gin.Context) (bool, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := allow(c)
		if err != nil {
			// Limiter trouble must not take payments down.
			s.log.Warn("rate limiter check failed", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func (s *Server) allowOrder(c *gin.Context) (bool, error) {
	if !s.limiter.Enabled() {
		return true, nil
	}
	return s.limiter.AllowOrder(c.Request.Context(), rateKey(c))
}

func (s *Server) allowVerify(c *gin.Context) (bool, error) {
	if !s.limiter.Enabled() {
		return true, nil
	}
	return s.limiter.AllowVerify(c.Request.Context(), rateKey(c))
}

func rateKey(c *gin.Context) string {
	if userID, ok := currentUserID(c); ok {
		return userID.String()
	}
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		ip = "unknown"
	}
	return ip
}

// CORS answers preflight requests from the storefront frontend.
func CORS(allowOrigin string) gin.HandlerFunc {
	if strings.TrimSpace(allowOrigin) == "" {
		allowOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
