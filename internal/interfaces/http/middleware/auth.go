// Package middleware provides gin middleware for the HTTP API.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/florexport/backend/internal/infrastructure/auth"
	"github.com/florexport/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// AuthConfig holds configuration for the JWT authentication middleware
type AuthConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are exact paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultAuthConfig returns the default authentication configuration
func DefaultAuthConfig(jwtService *auth.JWTService) AuthConfig {
	return AuthConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/api/v1/health",
		},
	}
}

// Auth creates JWT authentication middleware with the default configuration
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return AuthWithConfig(DefaultAuthConfig(jwtService))
}

// AuthWithConfig creates JWT authentication middleware
func AuthWithConfig(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, cfg AuthConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path))
	}

	code := dto.ErrCodeUnauthorized
	msg := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = "TOKEN_EXPIRED"
		msg = "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingUserID):
		code = "INVALID_TOKEN"
		msg = "Invalid token"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code = "INVALID_TOKEN"
		msg = "Token is not yet valid"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg))
}

// GetJWTClaims retrieves JWT claims from the gin context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the authenticated user ID from the gin context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
