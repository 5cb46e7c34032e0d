package model

import (
	"time"

	"gorm.io/gorm"
)

// Country is the root of the geography reference hierarchy
type Country struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;unique"`
	Code      string         `json:"code" gorm:"type:varchar(8);not null;unique"`
	IsActive  bool           `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// State belongs to exactly one country
type State struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Code      string         `json:"code" gorm:"type:varchar(8)"`
	CountryID uint           `json:"countryId" gorm:"index;not null"`
	Country   *Country       `json:"country,omitempty"`
	IsActive  bool           `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// City belongs to exactly one state
type City struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	StateID   uint           `json:"stateId" gorm:"index;not null"`
	State     *State         `json:"state,omitempty"`
	IsActive  bool           `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}
