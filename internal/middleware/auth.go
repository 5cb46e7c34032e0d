package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/agrofount/backoffice/pkg/jwtutil"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token and stores the admin claims in
// the request context. Expired and malformed tokens both force a logout:
// the client clears its session on the session_expired code.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, jwtutil.ErrSessionExpired) {
				log.Warn("Session expired", zap.Error(err))
				prometheus.RecordAuthError("session_expired")
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "Session expired. Please log in again.",
					"code":    "session_expired",
				})
			}
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token"})
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		return next(c)
	}
}

// AdminIDFromContext retrieves the authenticated admin ID from the context
func AdminIDFromContext(c echo.Context) (uint, bool) {
	adminID, ok := c.Get("admin_id").(uint)
	return adminID, ok
}
