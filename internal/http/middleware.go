package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/account-service/internal/metrics"
	"github.com/tazhibayda/account-service/internal/security"
)

const (
	requestIDKey = "X-Request-ID"
	authUserKey  = "authUser"
)

type AuthUser struct {
	ID primitive.ObjectID
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDKey, id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Auth derives the caller's identity from a verified access token, taken from
// the accessToken cookie or an Authorization bearer header. Handlers behind it
// fail closed: no token, no identity.
func (h *Handler) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerOrCookie(c)
		if tok == "" {
			abort(c, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		uid, err := security.ParseAccess(h.Cfg.AccessSecret, tok)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		oid, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		c.Set(authUserKey, AuthUser{ID: oid})
		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) string {
	if v, err := c.Cookie(accessCookie); err == nil && v != "" {
		return v
	}
	hdr := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return strings.TrimSpace(hdr[len("Bearer "):])
	}
	return ""
}

func requestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
