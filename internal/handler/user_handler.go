package handler

import (
	"net/http"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var userListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"username":  "username",
		"email":     "email",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"username", "email", "phone"},
	FilterFields: map[string]string{
		"filter.isActive": "is_active",
	},
}

var cartListOptions = query.Options{
	DefaultSort: "updated_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"updatedAt": "updated_at",
	},
	FilterFields: map[string]string{
		"filter.user.id": "user_id",
	},
}

// ListUsers returns a page of customer accounts
func ListUsers(c echo.Context) error {
	log := logger.FromEcho(c)

	var users []model.User
	page, err := query.Paginate(c, database.GetDB().Model(&model.User{}), userListOptions, &users)
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve users"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetUser returns a single customer account
func GetUser(c echo.Context) error {
	var user model.User
	if result := database.GetDB().First(&user, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	return c.JSON(http.StatusOK, user)
}

// setUserActive flips the account flag
func setUserActive(c echo.Context, active bool, transition string) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	user.IsActive = active
	if result := database.GetDB().Save(&user); result.Error != nil {
		log.Error("Failed to update user status", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update user"})
	}

	prometheus.RecordTransition("user", transition)
	log.Info("User status updated", zap.String("user_id", id), zap.Bool("is_active", active))
	return c.JSON(http.StatusOK, user)
}

// ActivateUser re-enables a customer account
func ActivateUser(c echo.Context) error {
	return setUserActive(c, true, "activate")
}

// DeactivateUser disables a customer account
func DeactivateUser(c echo.Context) error {
	return setUserActive(c, false, "deactivate")
}

// ListCarts returns a page of open customer carts
func ListCarts(c echo.Context) error {
	log := logger.FromEcho(c)

	var carts []model.Cart
	db := database.GetDB().Model(&model.Cart{}).Preload("User")
	page, err := query.Paginate(c, db, cartListOptions, &carts)
	if err != nil {
		log.Error("Failed to list carts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve carts"})
	}
	return c.JSON(http.StatusOK, page)
}
