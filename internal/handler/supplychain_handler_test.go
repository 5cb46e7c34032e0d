package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/agrofount/backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedDriver(t *testing.T, db *gorm.DB, active bool) model.Driver {
	t.Helper()

	driver := model.Driver{
		Name:        "Tunde",
		Phone:       "+2348012345678",
		VehicleType: "truck",
		IsActive:    active,
	}
	require.NoError(t, db.Create(&driver).Error)
	return driver
}

func TestCreateDriver(t *testing.T) {
	db := setupTestDB(t)

	body := `{"name": "Tunde", "phone": "+2348012345678", "licenseNumber": "LAG-123", "vehicleType": "truck"}`
	c, rec := request(t, http.MethodPost, "/supply-chain/drivers", body)
	require.NoError(t, CreateDriver(c))
	requireStatus(t, rec, http.StatusCreated)

	// Duplicate phone number conflicts
	c, rec = request(t, http.MethodPost, "/supply-chain/drivers", body)
	require.NoError(t, CreateDriver(c))
	requireStatus(t, rec, http.StatusConflict)

	var count int64
	db.Model(&model.Driver{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateDriverValidatesPhone(t *testing.T) {
	setupTestDB(t)

	body := `{"name": "Tunde", "phone": "08012345678"}`
	c, rec := request(t, http.MethodPost, "/supply-chain/drivers", body)
	require.NoError(t, CreateDriver(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestCreateShipment(t *testing.T) {
	db := setupTestDB(t)
	driver := seedDriver(t, db, true)

	body := `{"driverId": ` + itoa(driver.ID) + `, "cost": 15000, "route": "Ikeja -> Ibadan"}`
	c, rec := request(t, http.MethodPost, "/supply-chain/shipments", body)
	require.NoError(t, CreateShipment(c))
	requireStatus(t, rec, http.StatusCreated)

	var shipment model.Shipment
	decode(t, rec, &shipment)
	assert.True(t, strings.HasPrefix(shipment.TrackingNumber, "SHP-"))
	assert.Equal(t, model.ShipmentStatusPending, shipment.Status)
	assert.Equal(t, driver.ID, shipment.DriverID)
}

func TestCreateShipmentRejectsInactiveDriver(t *testing.T) {
	db := setupTestDB(t)
	driver := seedDriver(t, db, false)

	body := `{"driverId": ` + itoa(driver.ID) + `, "cost": 15000, "route": "Ikeja -> Ibadan"}`
	c, rec := request(t, http.MethodPost, "/supply-chain/shipments", body)
	require.NoError(t, CreateShipment(c))
	requireStatus(t, rec, http.StatusConflict)
}

func TestUpdateShipmentStatus(t *testing.T) {
	db := setupTestDB(t)
	driver := seedDriver(t, db, true)

	shipment := model.Shipment{
		TrackingNumber: "SHP-TEST0001",
		DriverID:       driver.ID,
		Route:          "Ikeja -> Ibadan",
		Status:         model.ShipmentStatusPending,
	}
	require.NoError(t, db.Create(&shipment).Error)

	c, rec := request(t, http.MethodPost, "/supply-chain/shipments/1/status", `{"status": "in_transit"}`, "id", itoa(shipment.ID))
	require.NoError(t, UpdateShipmentStatus(c))
	requireStatus(t, rec, http.StatusOK)

	c, rec = request(t, http.MethodPost, "/supply-chain/shipments/1/status", `{"status": "delivered"}`, "id", itoa(shipment.ID))
	require.NoError(t, UpdateShipmentStatus(c))
	requireStatus(t, rec, http.StatusOK)

	// Delivered is terminal
	c, rec = request(t, http.MethodPost, "/supply-chain/shipments/1/status", `{"status": "in_transit"}`, "id", itoa(shipment.ID))
	require.NoError(t, UpdateShipmentStatus(c))
	requireStatus(t, rec, http.StatusConflict)

	// Unknown vocabulary is rejected before the lookup
	c, rec = request(t, http.MethodPost, "/supply-chain/shipments/1/status", `{"status": "teleported"}`, "id", itoa(shipment.ID))
	require.NoError(t, UpdateShipmentStatus(c))
	requireStatus(t, rec, http.StatusBadRequest)
}
