package handler

import (
	"net/http"

	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/messaging"
	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness plus the state of the backing services
func HealthCheck(c echo.Context) error {
	dbStatus := "up"
	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "down"
		}
	} else {
		dbStatus = "down"
	}

	brokerStatus := "up"
	if !messaging.Connected() {
		brokerStatus = "down"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"database": dbStatus,
		"broker":   brokerStatus,
	})
}
