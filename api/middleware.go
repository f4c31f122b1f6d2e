package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	principalKey    = "principal"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID    string
	CompanyID string
}

var anonymous = Principal{UserID: "anonymous"}

// RequestID reuses the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}

func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic in handler",
			zap.Any("panic", recovered),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Stack("stack"),
		)
		abortWithError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	})
}

type claims struct {
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	jwt.RegisteredClaims
}

// Auth checks an HS256 bearer token. With an empty secret every caller is anonymous.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(principalKey, anonymous)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required")
			return
		}

		var cl claims
		_, err := jwt.ParseWithClaims(strings.TrimSpace(token), &cl, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || cl.UserID == "" {
			if err != nil {
				_ = c.Error(err)
			}
			abortWithError(c, http.StatusForbidden, "INVALID_TOKEN", "Invalid token")
			return
		}

		c.Set(principalKey, Principal{UserID: cl.UserID, CompanyID: cl.CompanyID})
		c.Next()
	}
}

func principalFrom(c *gin.Context) Principal {
	if p, ok := c.Get(principalKey); ok {
		if principal, ok := p.(Principal); ok {
			return principal
		}
	}
	return anonymous
}
