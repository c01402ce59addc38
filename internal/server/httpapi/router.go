package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is what the HTTP layer needs from services.UserService.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.Principal, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	AdminLogin(ctx context.Context, email, password string) (*services.LoginResult, error)
	ResolvePrincipal(ctx context.Context, token string) (*models.Principal, error)
}

// HealthFunc reports whether the service's dependencies are reachable.
type HealthFunc func(ctx context.Context) error

type Handler struct {
	users  UserService
	logger logging.Logger
	health HealthFunc
}

// NewRouter builds the gin engine with every route and middleware wired.
// metrics may be nil to leave /metrics unrouted.
func NewRouter(users UserService, l logging.Logger, health HealthFunc, metrics http.Handler) *gin.Engine {
	h := &Handler{users: users, logger: l.With("module", "http_api"), health: health}

	r := gin.New()
	r.Use(requestID(), requestLogger(h.logger), gin.CustomRecovery(h.onPanic))

	r.GET("/healthz", h.healthz)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", h.register)
	v1.POST("/auth/login", h.login)
	v1.POST("/admin/login", h.adminLogin)
	v1.GET("/auth/me", h.authenticate(), h.me)

	return r
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn(ctx, "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) onPanic(c *gin.Context, r any) {
	h.logger.Error(c.Request.Context(), "panic in handler", "panic", r, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, detail(msgInternal))
}
