package model

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog CMS entry, addressed by slug
type Post struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	Title      string         `json:"title" gorm:"type:varchar(255);not null"`
	Slug       string         `json:"slug" gorm:"type:varchar(255);unique;not null"`
	Content    string         `json:"content" gorm:"type:text"` // rich-text HTML
	Tags       StringList     `json:"tags" gorm:"type:jsonb"`
	CoverImage string         `json:"coverImage" gorm:"type:varchar(512)"`
	Published  bool           `json:"published" gorm:"default:false"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}
