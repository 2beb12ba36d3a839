package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

const (
	HeaderRequestID = "X-Request-ID"

	keyRequestID    = "request_id"
	keyAdminSubject = "admin_subject"
)

// requestID tags every request with an id, reusing a well-formed incoming one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(keyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", c.GetString(keyRequestID)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("Request failed", fields...)
			return
		}
		logger.Debug("Request served", fields...)
	}
}

// errorBoundary renders failures of one route as a JSON error view: both
// errors attached with c.Error and panics raised by later handlers.
func errorBoundary(route Route, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Handler panicked",
					zap.String("route", route.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"))
				render(c, route, http.StatusInternalServerError, fmt.Errorf("internal error"))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Warn("Handler error", zap.String("route", route.Path), zap.Error(err))
		}
		render(c, route, status, err)
	}
}

func render(c *gin.Context, route Route, status int, err error) {
	if c.Writer.Written() {
		c.Abort()
		return
	}
	view := errorView{
		Error:     err.Error(),
		Route:     route.Title,
		RequestID: c.GetString(keyRequestID),
	}
	if kind, ok := domain.FetchErrorKindOf(err); ok {
		view.Kind = string(kind)
	}
	c.AbortWithStatusJSON(status, view)
}

// requireAdmin accepts an HS256 bearer token signed with secret. With no
// secret configured the route is closed.
func requireAdmin(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			_ = c.Error(errAdminDisabled)
			c.Abort()
			return
		}

		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			_ = c.Error(fmt.Errorf("%w: missing bearer token", errUnauthorized))
			c.Abort()
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: %v", errUnauthorized, err))
			c.Abort()
			return
		}
		if !token.Valid {
			_ = c.Error(fmt.Errorf("%w: invalid token", errUnauthorized))
			c.Abort()
			return
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set(keyAdminSubject, sub)
		}
		c.Next()
	}
}
