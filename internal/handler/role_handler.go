package handler

import (
	"net/http"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var roleListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"name":      "name",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"name", "description"},
}

// permissionCatalog lists every resource/action pair a role may grant.
// Reference data for the role form, not an enforcement table.
var permissionCatalog = []model.Permission{
	{Resource: "admin", Actions: []string{"create", "read", "update", "delete"}},
	{Resource: "role", Actions: []string{"create", "read", "update", "delete"}},
	{Resource: "user", Actions: []string{"read", "activate", "deactivate"}},
	{Resource: "product", Actions: []string{"create", "read", "update", "delete"}},
	{Resource: "product-location", Actions: []string{"create", "read", "update", "delete", "publish"}},
	{Resource: "order", Actions: []string{"read", "update", "cancel"}},
	{Resource: "payment", Actions: []string{"read", "confirm", "cancel"}},
	{Resource: "credit-facility", Actions: []string{"read", "approve"}},
	{Resource: "geography", Actions: []string{"create", "read", "update", "delete"}},
	{Resource: "post", Actions: []string{"create", "read", "update", "delete"}},
	{Resource: "supply-chain", Actions: []string{"create", "read", "update", "delete"}},
	{Resource: "message", Actions: []string{"send"}},
}

// RoleRequest is the create/update payload for roles
type RoleRequest struct {
	Name        string               `json:"name" validate:"required"`
	Description string               `json:"description"`
	Permissions model.PermissionList `json:"permissions"`
}

// ListRoles returns a page of roles
func ListRoles(c echo.Context) error {
	log := logger.FromEcho(c)

	var roles []model.Role
	page, err := query.Paginate(c, database.GetDB().Model(&model.Role{}), roleListOptions, &roles)
	if err != nil {
		log.Error("Failed to list roles", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve roles"})
	}
	return c.JSON(http.StatusOK, page)
}

// ListPermissions returns the permission catalog
func ListPermissions(c echo.Context) error {
	return c.JSON(http.StatusOK, permissionCatalog)
}

// GetRole returns a single role
func GetRole(c echo.Context) error {
	var role model.Role
	if result := database.GetDB().First(&role, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
	}
	return c.JSON(http.StatusOK, role)
}

// CreateRole creates a new role
func CreateRole(c echo.Context) error {
	log := logger.FromEcho(c)

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var count int64
	database.GetDB().Model(&model.Role{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "role with this name already exists"})
	}

	role := model.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	if result := database.GetDB().Create(&role); result.Error != nil {
		log.Error("Failed to create role", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create role"})
	}

	log.Info("Role created", zap.Uint("role_id", role.ID), zap.String("name", role.Name))
	return c.JSON(http.StatusCreated, role)
}

// UpdateRole updates a role's details and permissions
func UpdateRole(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var role model.Role
	if result := database.GetDB().First(&role, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
	}

	role.Name = req.Name
	role.Description = req.Description
	role.Permissions = req.Permissions

	if result := database.GetDB().Save(&role); result.Error != nil {
		log.Error("Failed to update role", zap.String("role_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update role"})
	}

	log.Info("Role updated", zap.Uint("role_id", role.ID))
	return c.JSON(http.StatusOK, role)
}

// DeleteRole soft deletes a role that no admin still holds
func DeleteRole(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var inUse int64
	database.GetDB().Model(&model.Admin{}).Where("role_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "role is still assigned to admins"})
	}

	result := database.GetDB().Delete(&model.Role{}, id)
	if result.Error != nil {
		log.Error("Failed to delete role", zap.String("role_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete role"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
	}

	log.Info("Role deleted", zap.String("role_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "role deleted successfully"})
}
