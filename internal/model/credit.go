package model

import (
	"time"

	"gorm.io/gorm"
)

// Credit facility request statuses
const (
	CreditStatusPending  = "pending"
	CreditStatusApproved = "approved"
	CreditStatusRejected = "rejected"
)

// CreditFacilityRequest is a customer's application for a credit line.
// Approval may be partial: approvedAmount can be anything in
// (0, requestedAmount].
type CreditFacilityRequest struct {
	ID              uint           `json:"id" gorm:"primarykey"`
	UserID          uint           `json:"userId" gorm:"index;not null"`
	User            *User          `json:"user,omitempty"`
	RequestedAmount float64        `json:"requestedAmount" gorm:"not null"`
	ApprovedAmount  float64        `json:"approvedAmount"`
	Status          string         `json:"status" gorm:"type:varchar(32);default:'pending';index"`
	Reason          string         `json:"reason" gorm:"type:text"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}
