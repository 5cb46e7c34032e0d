package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/agrofount/backoffice/internal/geo"
	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/internal/query"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// geocoder resolves shipment route coordinates, nil when unconfigured
var geocoder *geo.Geocoder

// InitGeocoder wires the reverse-geocoding provider into shipment
// handling
func InitGeocoder(g *geo.Geocoder) {
	geocoder = g
}

var driverListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"name":      "name",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"name", "phone", "license_number"},
	FilterFields: map[string]string{
		"filter.isActive": "is_active",
	},
}

var shipmentListOptions = query.Options{
	DefaultSort: "created_at DESC",
	SortFields: map[string]string{
		"id":        "id",
		"cost":      "cost",
		"status":    "status",
		"createdAt": "created_at",
	},
	SearchColumns: []string{"tracking_number", "route"},
	FilterFields: map[string]string{
		"filter.status":    "status",
		"filter.driver.id": "driver_id",
	},
}

// DriverRequest is the create/update payload for drivers
type DriverRequest struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required,e164"`
	LicenseNumber string `json:"licenseNumber"`
	VehicleType   string `json:"vehicleType"`
	IsActive      *bool  `json:"isActive"`
}

// ShipmentRequest is the create/update payload for shipments. Optional
// coordinates are reverse geocoded into route city/state/country.
type ShipmentRequest struct {
	OrderID           uint       `json:"orderId"`
	DriverID          uint       `json:"driverId" validate:"required"`
	Cost              float64    `json:"cost" validate:"gte=0"`
	Route             string     `json:"route" validate:"required"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

// ListDrivers returns a page of drivers
func ListDrivers(c echo.Context) error {
	log := logger.FromEcho(c)

	var drivers []model.Driver
	page, err := query.Paginate(c, database.GetDB().Model(&model.Driver{}), driverListOptions, &drivers)
	if err != nil {
		log.Error("Failed to list drivers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve drivers"})
	}
	return c.JSON(http.StatusOK, page)
}

// CreateDriver registers a driver
func CreateDriver(c echo.Context) error {
	log := logger.FromEcho(c)

	var req DriverRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var count int64
	database.GetDB().Model(&model.Driver{}).Where("phone = ?", req.Phone).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "driver with this phone number already exists"})
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	driver := model.Driver{
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		VehicleType:   req.VehicleType,
		IsActive:      active,
	}
	if result := database.GetDB().Create(&driver); result.Error != nil {
		log.Error("Failed to create driver", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create driver"})
	}

	log.Info("Driver created", zap.Uint("driver_id", driver.ID), zap.String("name", driver.Name))
	return c.JSON(http.StatusCreated, driver)
}

// UpdateDriver updates a driver
func UpdateDriver(c echo.Context) error {
	var req DriverRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var driver model.Driver
	if result := database.GetDB().First(&driver, c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "driver not found"})
	}

	driver.Name = req.Name
	driver.Phone = req.Phone
	driver.LicenseNumber = req.LicenseNumber
	driver.VehicleType = req.VehicleType
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}

	if result := database.GetDB().Save(&driver); result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update driver"})
	}
	return c.JSON(http.StatusOK, driver)
}

// DeleteDriver soft deletes a driver
func DeleteDriver(c echo.Context) error {
	result := database.GetDB().Delete(&model.Driver{}, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to delete driver"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "driver not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "driver deleted successfully"})
}

// ListShipments returns a page of shipments
func ListShipments(c echo.Context) error {
	log := logger.FromEcho(c)

	var shipments []model.Shipment
	db := database.GetDB().Model(&model.Shipment{}).Preload("Driver").Preload("Order")
	page, err := query.Paginate(c, db, shipmentListOptions, &shipments)
	if err != nil {
		log.Error("Failed to list shipments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve shipments"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetShipment returns a single shipment
func GetShipment(c echo.Context) error {
	var shipment model.Shipment
	result := database.GetDB().Preload("Driver").Preload("Order").First(&shipment, c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "shipment not found"})
	}
	return c.JSON(http.StatusOK, shipment)
}

// CreateShipment books a shipment with a driver. Route coordinates, when
// supplied, are reverse geocoded best effort.
func CreateShipment(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ShipmentRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}
	if err := validate.Struct(&req); err != nil {
		return validationFailed(c, validationMessages(err))
	}

	var driver model.Driver
	if result := database.GetDB().First(&driver, req.DriverID); result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "driver not found"})
	}
	if !driver.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"message": "driver is not active"})
	}

	shipment := model.Shipment{
		TrackingNumber:    "SHP-" + strings.ToUpper(uuid.New().String()[:8]),
		OrderID:           req.OrderID,
		DriverID:          driver.ID,
		Cost:              req.Cost,
		Route:             req.Route,
		Status:            model.ShipmentStatusPending,
		EstimatedDelivery: req.EstimatedDelivery,
	}

	if geocoder != nil && req.Latitude != nil && req.Longitude != nil {
		loc, err := geocoder.Reverse(c.Request().Context(), *req.Latitude, *req.Longitude)
		if err != nil {
			// Route fields stay empty; the shipment is still bookable
			log.Warn("Route geocoding failed", zap.Error(err))
		} else {
			shipment.RouteCity = loc.City
			shipment.RouteState = loc.State
			shipment.RouteCountry = loc.Country
		}
	}

	if result := database.GetDB().Create(&shipment); result.Error != nil {
		log.Error("Failed to create shipment", zap.Uint("driver_id", driver.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to create shipment"})
	}

	log.Info("Shipment created",
		zap.Uint("shipment_id", shipment.ID),
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.Uint("driver_id", driver.ID))
	return c.JSON(http.StatusCreated, shipment)
}

// UpdateShipmentStatus moves a shipment along the delivery vocabulary
func UpdateShipmentStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}

	switch req.Status {
	case model.ShipmentStatusPending, model.ShipmentStatusInTransit,
		model.ShipmentStatusDelivered, model.ShipmentStatusCancelled:
	default:
		return validationFailed(c, []string{"unknown shipment status"})
	}

	var shipment model.Shipment
	if result := database.GetDB().First(&shipment, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "shipment not found"})
	}

	if shipment.Status == model.ShipmentStatusDelivered || shipment.Status == model.ShipmentStatusCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"message": "shipment is already finalized"})
	}

	shipment.Status = req.Status
	if result := database.GetDB().Save(&shipment); result.Error != nil {
		log.Error("Failed to update shipment status", zap.String("shipment_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to update shipment"})
	}

	prometheus.RecordTransition("shipment", req.Status)
	log.Info("Shipment status updated",
		zap.String("shipment_id", id),
		zap.String("status", shipment.Status))
	return c.JSON(http.StatusOK, shipment)
}
