package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worldref/backend/internal/infrastructure/auth"
	"github.com/worldref/backend/internal/infrastructure/logger"
)

// Keys under which the middleware publishes the verified claims.
const (
	JWTClaimsKey    = "jwt_claims"
	JWTAccountIDKey = "jwt_account_id"
	JWTProviderKey  = "jwt_provider"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// JWTMiddlewareConfig configures the authentication middleware.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService

	// SkipPaths and SkipPathPrefixes name routes served without a token.
	SkipPaths        []string
	SkipPathPrefixes []string

	// OnError replaces the default 401 response when set.
	OnError func(c *gin.Context, err error)

	Logger *zap.Logger
}

// DefaultJWTConfig leaves the anonymous surface open: health and
// system endpoints, identity resolution, click tracking, public stats,
// and the short-link redirects under /r/.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/auth/resolve",
			"/api/v1/referrals/assign",
			"/api/v1/referrals/random",
			"/api/v1/visits",
			"/api/v1/stats",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{"/r/"},
	}
}

// JWTAuthMiddleware authenticates requests with the default config.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates every request outside the
// configured skip lists and stores the verified claims on the context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			rejectToken(c, cfg, err)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			rejectToken(c, cfg, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTAccountIDKey, claims.AccountID)
		c.Set(JWTProviderKey, claims.Provider)

		// Propagate the account into the request context so the
		// request-scoped logger tags every downstream entry.
		ctx := c.Request.Context()
		ctx, _ = logger.WithAccountID(ctx, logger.FromContext(ctx), claims.AccountID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("account_id", claims.AccountID),
				zap.String("provider", claims.Provider),
			)
		}

		c.Next()
	}
}

func skipAuth(cfg JWTMiddlewareConfig, path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken pulls the token out of the Authorization header. Any
// shape problem surfaces as ErrInvalidToken.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	token, found := strings.CutPrefix(header, BearerPrefix)
	if !found || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func rejectToken(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, message := authErrorShape(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

func authErrorShape(err error) (code, message string) {
	switch err {
	case auth.ErrExpiredToken:
		return "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrTokenNotYetValid:
		return "TOKEN_NOT_VALID", "Token is not yet valid"
	case auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrMissingAccountID:
		return "INVALID_TOKEN", "Invalid token"
	default:
		return "UNAUTHORIZED", "Authentication required"
	}
}

// GetJWTClaims returns the verified claims, or nil before authentication.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(JWTClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// MustGetJWTClaims returns the verified claims or panics. Only for
// routes guaranteed to sit behind the auth middleware.
func MustGetJWTClaims(c *gin.Context) *auth.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		panic("jwt claims not found in context")
	}
	return claims
}

// GetJWTAccountID returns the authenticated account ID, or "".
func GetJWTAccountID(c *gin.Context) string {
	if v, exists := c.Get(JWTAccountIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTAccountUUID parses the authenticated account ID as a UUID.
func GetJWTAccountUUID(c *gin.Context) (uuid.UUID, bool) {
	id := GetJWTAccountID(c)
	if id == "" {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

// GetJWTProvider returns the identity provider from the claims, or "".
func GetJWTProvider(c *gin.Context) string {
	if v, exists := c.Get(JWTProviderKey); exists {
		if p, ok := v.(string); ok {
			return p
		}
	}
	return ""
}
