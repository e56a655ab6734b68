package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextPrincipalKey = "principal"
)

// jwtClaims defines the structure we expect in the JWT payload.
// Mirroring the structure used in authService.generateJWT
type jwtClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}
		if !token.Valid || claims.ExpiresAt == nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid user id in token")
			return
		}
		role, ok := domain.ParseRole(claims.Role)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Unknown role '%s' in token", claims.Role))
			return
		}

		c.Set(ContextPrincipalKey, policy.Principal{ID: userID, Role: role})
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware. Services still apply the ownership checks.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			abortWithError(c, http.StatusInternalServerError, "User principal not found in context")
			return
		}
		for _, allowedRole := range allowedRoles {
			if p.Role == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", p.Role))
	}
}

// principalFrom returns the caller set by AuthMiddleware.
func principalFrom(c *gin.Context) (policy.Principal, bool) {
	raw, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return policy.Principal{}, false
	}
	p, ok := raw.(policy.Principal)
	return p, ok
}

// parseIDParam reads a hex ObjectID path parameter and answers 400 when malformed.
func parseIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// dateLayout is the calendar date format used in request bodies and queries.
const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD (or RFC 3339) value and answers 400 when malformed.
// An RFC 3339 timestamp stands for its calendar date in the offset it was sent with.
func parseDate(c *gin.Context, field, value string) (time.Time, bool) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		d, err = time.Parse(time.RFC3339, value)
	}
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", field))
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
}

// parseOptionalDate is parseDate for optional query parameters.
func parseOptionalDate(c *gin.Context, field string) (*time.Time, bool) {
	value := c.Query(field)
	if value == "" {
		return nil, true
	}
	d, ok := parseDate(c, field, value)
	if !ok {
		return nil, false
	}
	return &d, true
}
