package model

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses. This is the authoritative vocabulary; every financial
// rollup keys off PaymentStatusCompleted.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment records one payment attempt against an order
type Payment struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Reference     string         `json:"reference" gorm:"type:varchar(64);unique;not null"`
	Email         string         `json:"email" gorm:"type:varchar(255)"`
	OrderID       uint           `json:"orderId" gorm:"index;not null"`
	Order         *Order         `json:"order,omitempty"`
	Amount        float64        `json:"amount" gorm:"not null"`
	AmountPaid    float64        `json:"amountPaid"`
	PaymentStatus string         `json:"paymentStatus" gorm:"type:varchar(32);default:'pending';index"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}
