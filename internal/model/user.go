package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// User is a storefront customer account
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Username  string         `json:"username" gorm:"type:varchar(100)"`
	Email     string         `json:"email" gorm:"type:varchar(255);unique;not null"`
	Phone     string         `json:"phone" gorm:"type:varchar(32)"`
	IsActive  bool           `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// CartItem is one line of a customer's cart snapshot
type CartItem struct {
	ProductName string  `json:"product"`
	Unit        string  `json:"unit"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// CartItemList is the JSON-encoded cart contents
type CartItemList []CartItem

func (l CartItemList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *CartItemList) Scan(value interface{}) error {
	return jsonScan(value, l)
}

// Cart is a customer's open cart, read-only from the back office
type Cart struct {
	ID        uint         `json:"id" gorm:"primarykey"`
	UserID    uint         `json:"userId" gorm:"index;not null"`
	User      *User        `json:"user,omitempty"`
	Items     CartItemList `json:"items" gorm:"type:jsonb"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
