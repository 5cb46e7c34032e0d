package model

import (
	"time"

	"gorm.io/gorm"
)

// Shipment statuses mirror the order-status vocabulary
const (
	ShipmentStatusPending   = "pending"
	ShipmentStatusInTransit = "in_transit"
	ShipmentStatusDelivered = "delivered"
	ShipmentStatusCancelled = "cancelled"
)

// Driver is a supply-chain driver
type Driver struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Name          string         `json:"name" gorm:"type:varchar(100);not null"`
	Phone         string         `json:"phone" gorm:"type:varchar(32);unique;not null"`
	LicenseNumber string         `json:"licenseNumber" gorm:"type:varchar(64)"`
	VehicleType   string         `json:"vehicleType" gorm:"type:varchar(64)"`
	IsActive      bool           `json:"isActive" gorm:"default:true"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Shipment tracks one delivery run. Route fields resolved from coordinates
// are best effort and stay empty when geocoding fails.
type Shipment struct {
	ID                uint           `json:"id" gorm:"primarykey"`
	TrackingNumber    string         `json:"trackingNumber" gorm:"type:varchar(64);unique;not null"`
	OrderID           uint           `json:"orderId" gorm:"index"`
	Order             *Order         `json:"order,omitempty"`
	DriverID          uint           `json:"driverId" gorm:"index"`
	Driver            *Driver        `json:"driver,omitempty"`
	Cost              float64        `json:"cost"`
	Route             string         `json:"route" gorm:"type:varchar(255)"`
	RouteCity         string         `json:"routeCity" gorm:"type:varchar(100)"`
	RouteState        string         `json:"routeState" gorm:"type:varchar(100)"`
	RouteCountry      string         `json:"routeCountry" gorm:"type:varchar(100)"`
	Status            string         `json:"status" gorm:"type:varchar(32);default:'pending';index"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}
