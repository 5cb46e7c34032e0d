package handler

import (
	"net/http"
	"time"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/jwtutil"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates an admin and issues a session token
func Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return invalidRequest(c)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var admin model.Admin
	result := database.GetDB().Preload("Role").Where("email = ?", req.Email).First(&admin)
	if result.Error != nil {
		log.Warn("Admin not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	if !admin.IsActive {
		log.Warn("Inactive admin attempted login", zap.String("email", req.Email))
		prometheus.RecordAuthError("inactive_account")
		return c.JSON(http.StatusForbidden, echo.Map{"message": "account is deactivated"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	roleName := ""
	if admin.Role != nil {
		roleName = admin.Role.Name
	}

	token, err := jwtutil.GenerateToken(admin.Email, admin.ID, roleName)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token error"})
	}

	log.Info("Admin logged in",
		zap.String("email", admin.Email),
		zap.Uint("admin_id", admin.ID),
		zap.String("role", roleName))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"admin": echo.Map{
			"id":       admin.ID,
			"username": admin.Username,
			"email":    admin.Email,
			"role":     roleName,
		},
	})
}

// Profile returns the authenticated admin's account
func Profile(c echo.Context) error {
	log := logger.FromEcho(c)

	adminID, ok := c.Get("admin_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authenticated"})
	}

	var admin model.Admin
	if result := database.GetDB().Preload("Role").First(&admin, adminID); result.Error != nil {
		log.Error("Admin not found for profile", zap.Uint("admin_id", adminID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "admin not found"})
	}

	return c.JSON(http.StatusOK, admin)
}

// VerifyEmail marks the admin account behind a verification token as
// verified. The token is a short-lived session token mailed on invite.
func VerifyEmail(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "verification token is required"})
	}

	claims, err := jwtutil.ValidateToken(req.Token)
	if err != nil {
		log.Warn("Invalid verification token", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid or expired verification token"})
	}

	var admin model.Admin
	if result := database.GetDB().First(&admin, claims.AdminID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "admin not found"})
	}

	if admin.EmailVerified {
		return c.JSON(http.StatusOK, echo.Map{"message": "email already verified"})
	}

	admin.EmailVerified = true
	if result := database.GetDB().Save(&admin); result.Error != nil {
		log.Error("Failed to verify email", zap.Uint("admin_id", admin.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to verify email"})
	}

	log.Info("Admin email verified", zap.Uint("admin_id", admin.ID), zap.String("email", admin.Email))
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified successfully"})
}
