package handler

import (
	"net/http"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var adminListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"username":  "username",
		"email":     "email",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"username", "email", "phone"},
	FilterFields: map[string]string{
		"filter.role.id":  "role_id",
		"filter.isActive": "is_active",
	},
}

// AdminRequest is the invite/update payload for admin accounts
type AdminRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
	RoleID   uint   `json:"roleId" validate:"required"`
}

// ListAdmins returns a page of admin accounts
func ListAdmins(c echo.Context) error {
	log := logger.FromEcho(c)

	var admins []model.Admin
	page, err := query.Paginate(c, database.GetDB().Model(&model.Admin{}).Preload("Role"), adminListOptions, &admins)
	if err != nil {
		log.Error("Failed to list admins", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve admins"})
	}

	return c.JSON(http.StatusOK, page)
}

// GetAdmin returns a single admin account
func GetAdmin(c echo.Context) error {
	var admin model.Admin
	if result := database.GetDB().Preload("Role").First(&admin, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "admin not found"})
	}
	return c.JSON(http.StatusOK, admin)
}

// InviteAdmin creates an admin account with a temporary password and a
// verification token the mailer delivers out of band
func InviteAdmin(c echo.Context) error {
	log := logger.FromEcho(c)

	var req AdminRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var count int64
	database.GetDB().Model(&model.Admin{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		log.Warn("Admin with this email already exists", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"message": "admin with this email already exists"})
	}

	tempPassword := uuid.New().String()[:12]
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create admin"})
	}

	admin := model.Admin{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hash),
		RoleID:   req.RoleID,
		IsActive: true,
	}
	if result := database.GetDB().Create(&admin); result.Error != nil {
		log.Error("Failed to create admin", zap.String("email", req.Email), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create admin"})
	}

	log.Info("Admin invited",
		zap.Uint("admin_id", admin.ID),
		zap.String("email", admin.Email),
		zap.Uint("role_id", admin.RoleID))

	return c.JSON(http.StatusCreated, echo.Map{
		"admin":        admin,
		"tempPassword": tempPassword,
	})
}

// UpdateAdmin updates an admin's details and role
func UpdateAdmin(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req AdminRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var admin model.Admin
	if result := database.GetDB().First(&admin, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "admin not found"})
	}

	if req.Email != admin.Email {
		var count int64
		database.GetDB().Model(&model.Admin{}).Where("email = ? AND id != ?", req.Email, id).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"message": "admin with this email already exists"})
		}
	}

	admin.Username = req.Username
	admin.Email = req.Email
	admin.Phone = req.Phone
	admin.RoleID = req.RoleID

	if result := database.GetDB().Save(&admin); result.Error != nil {
		log.Error("Failed to update admin", zap.String("admin_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update admin"})
	}

	log.Info("Admin updated", zap.Uint("admin_id", admin.ID))
	return c.JSON(http.StatusOK, admin)
}

// DeleteAdmin soft deletes an admin account
func DeleteAdmin(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Admin{}, id)
	if result.Error != nil {
		log.Error("Failed to delete admin", zap.String("admin_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete admin"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "admin not found"})
	}

	log.Info("Admin deleted", zap.String("admin_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "admin deleted successfully"})
}
