package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID   = "X-Request-Id"
	HeaderProcessTime = "X-Process-Time"

	principalKey = "principal"
	requestIDKey = "request_id"
)

// requestID propagates or assigns an X-Request-Id.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// timingWriter stamps X-Process-Time just before the response headers go
// out.
type timingWriter struct {
	gin.ResponseWriter
	start time.Time
	once  sync.Once
}

func (w *timingWriter) stamp() {
	w.once.Do(func() {
		elapsed := time.Since(w.start).Seconds()
		w.Header().Set(HeaderProcessTime, strconv.FormatFloat(elapsed, 'f', 6, 64))
	})
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// requestLogger records every request and sets X-Process-Time.
func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: start}

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			l.Error(ctx, "request completed", args...)
		case status >= http.StatusBadRequest:
			l.Warn(ctx, "request completed", args...)
		default:
			l.Debug(ctx, "request completed", args...)
		}
	}
}

// authenticate resolves the Bearer token into a principal. Every token
// failure answers the same 401; the kind is only logged.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			h.rejectToken(c, "missing_bearer")
			return
		}

		p, err := h.users.ResolvePrincipal(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorInternal) {
				h.logger.Error(c.Request.Context(), "principal resolution failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, detail(msgInternal))
				return
			}
			kind := auth.ErrorKind(err)
			if errors.Is(err, common.ErrUnknownSubject) {
				kind = "unknown_subject"
			}
			h.rejectToken(c, kind)
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

func (h *Handler) rejectToken(c *gin.Context, kind string) {
	h.logger.Info(c.Request.Context(), "token rejected", "kind", kind, "request_id", c.GetString(requestIDKey))
	c.Header("WWW-Authenticate", common.BearerScheme)
	c.AbortWithStatusJSON(http.StatusUnauthorized, detail(msgInvalidToken))
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func principalFrom(c *gin.Context) (*models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*models.Principal)
	return p, ok
}
