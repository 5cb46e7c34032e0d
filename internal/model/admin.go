package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Permission grants a set of actions on one resource
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// PermissionList is the JSON-encoded permission set of a role
type PermissionList []Permission

func (l PermissionList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *PermissionList) Scan(value interface{}) error {
	return jsonScan(value, l)
}

// Role groups permissions under a name
type Role struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null;unique"`
	Description string         `json:"description" gorm:"type:text"`
	Permissions PermissionList `json:"permissions" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// Admin is a back-office account
type Admin struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Username      string         `json:"username" gorm:"type:varchar(100);not null"`
	Email         string         `json:"email" gorm:"type:varchar(255);unique;not null"`
	Phone         string         `json:"phone" gorm:"type:varchar(32)"`
	Password      string         `json:"-" gorm:"type:varchar(255);not null"`
	RoleID        uint           `json:"roleId" gorm:"index"`
	Role          *Role          `json:"role,omitempty"`
	EmailVerified bool           `json:"emailVerified" gorm:"default:false"`
	IsActive      bool           `json:"isActive" gorm:"default:true"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}
