package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Address is the delivery address snapshot stored on an order. Pickup
// orders carry a pickup location instead of a street address.
type Address struct {
	Street         string `json:"street,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	PickupLocation string `json:"pickupLocation,omitempty"`
}

func (a Address) Value() (driver.Value, error) { return jsonValue(a) }
func (a *Address) Scan(value interface{}) error {
	return jsonScan(value, a)
}

// OrderItem is one line of an order. Price is the platform price at order
// time and UOM snapshots the listing's pricing table so vendor margins can
// be computed after the listing changes.
type OrderItem struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	OrderID     uint      `json:"orderId" gorm:"index;not null"`
	ProductName string    `json:"product" gorm:"type:varchar(255);not null"`
	Unit        string    `json:"unit" gorm:"type:varchar(50)"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"`
	UOM         UOMList   `json:"uom" gorm:"type:jsonb"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Order is a customer order
type Order struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Code          string         `json:"code" gorm:"type:varchar(32);unique;not null"`
	Status        string         `json:"status" gorm:"type:varchar(32);default:'pending';index"`
	PaymentStatus string         `json:"paymentStatus" gorm:"type:varchar(32);default:'pending';index"`
	UserID        *uint          `json:"userId" gorm:"index"`
	User          *User          `json:"user,omitempty"`
	Items         []OrderItem    `json:"items"`
	Address       Address        `json:"address" gorm:"type:jsonb"`
	SubTotal      float64        `json:"subTotal"`
	VAT           float64        `json:"vat"`
	DeliveryFee   float64        `json:"deliveryFee"`
	TotalPrice    float64        `json:"totalPrice"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Cancellable reports whether the order may still be cancelled
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}
