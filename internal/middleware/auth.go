package middleware

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Roles
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
)

// CustomClaims contains the custom claims from Auth0 JWT.
// Roles are added to the access token by an Auth0 action under a namespaced claim.
type CustomClaims struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"https://royalty-ledger.app/roles"`
	Permissions []string `json:"permissions"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasRole reports whether the claims carry role, either as a role or as a "role:<name>" permission
func (c *CustomClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	for _, p := range c.Permissions {
		if p == "role:"+role {
			return true
		}
	}
	return false
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// Auth0IDKey is the context key for the Auth0 user ID (subject)
	Auth0IDKey contextKey = "auth0_id"
)

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator *validator.Validator
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(domain, audience string) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{validator: jwtValidator}, nil
}

// Authenticate returns an Echo middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "invalid claims")
			}

			SetClaims(c, validatedClaims)
			return next(c)
		}
	}
}

// SetClaims stores validated claims and their subject on the request context
func SetClaims(c echo.Context, claims *validator.ValidatedClaims) {
	ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
	ctx = context.WithValue(ctx, Auth0IDKey, claims.RegisteredClaims.Subject)
	c.SetRequest(c.Request().WithContext(ctx))
}

// RequireRole returns an Echo middleware that rejects callers without role
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			custom := GetCustomClaims(c)
			if custom == nil || !custom.HasRole(role) {
				log.Debug().
					Str("auth0_id", GetAuth0ID(c)).
					Str("role", role).
					Msg("Role check failed")
				return forbiddenError(c, "requires the "+role+" role")
			}
			return next(c)
		}
	}
}

// GetAuth0ID extracts the Auth0 user ID from the context
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}

// Actor returns a display name for the caller, for audit logging
func Actor(c echo.Context) string {
	if custom := GetCustomClaims(c); custom != nil && custom.Email != "" {
		return custom.Email
	}
	return GetAuth0ID(c)
}
