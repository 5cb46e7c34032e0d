package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// VolumeTier is one row of a unit's volume-tier-pricing table. Price is
// derived from the platform price and discount, never supplied directly.
type VolumeTier struct {
	MinVolume int     `json:"minVolume"`
	MaxVolume int     `json:"maxVolume"`
	Discount  float64 `json:"discount"`
	Price     float64 `json:"price"`
}

// UnitPricing is one unit-of-measure section of a listing. The vendor
// price must stay strictly below the platform price.
type UnitPricing struct {
	Unit          string       `json:"unit"`
	VendorPrice   float64      `json:"vendorPrice"`
	PlatformPrice float64      `json:"platformPrice"`
	VTP           []VolumeTier `json:"vtp"`
}

// UOMList is the JSON-encoded pricing table of a listing
type UOMList []UnitPricing

func (l UOMList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *UOMList) Scan(value interface{}) error {
	return jsonScan(value, l)
}

// Product is catalog master data
type Product struct {
	ID              uint           `json:"id" gorm:"primarykey"`
	Name            string         `json:"name" gorm:"type:varchar(255);not null"`
	Description     string         `json:"description" gorm:"type:text"`
	SKU             string         `json:"sku" gorm:"type:varchar(100);unique;not null"`
	PrimaryCategory string         `json:"primaryCategory" gorm:"type:varchar(100);index"`
	Brand           string         `json:"brand" gorm:"type:varchar(100)"`
	Images          StringList     `json:"images" gorm:"type:jsonb"`
	IsActive        bool           `json:"isActive" gorm:"default:true"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// ProductLocation is a state-scoped listing of a catalog product with its
// own pricing table, availability and SEO fields
type ProductLocation struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	Slug           string         `json:"slug" gorm:"type:varchar(255);unique;not null"`
	ProductID      uint           `json:"productId" gorm:"index;not null"`
	Product        *Product       `json:"product,omitempty"`
	StateID        uint           `json:"stateId" gorm:"index;not null"`
	State          *State         `json:"state,omitempty"`
	Price          float64        `json:"price" gorm:"not null"`
	MOQ            int            `json:"moq" gorm:"default:5"`
	AvailableDates StringList     `json:"availableDates" gorm:"type:jsonb"`
	UOM            UOMList        `json:"uom" gorm:"type:jsonb"`
	IsDraft        bool           `json:"isDraft" gorm:"default:true"`
	IsAvailable    bool           `json:"isAvailable" gorm:"default:true"`
	SEOTitle       string         `json:"seoTitle" gorm:"type:varchar(255)"`
	SEODescription string         `json:"seoDescription" gorm:"type:text"`
	SEOKeywords    StringList     `json:"seoKeywords" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}
