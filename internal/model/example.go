package model

import "gorm.io/gorm"

type Example struct {
	gorm.Model
	Slug           string `json:"slug" gorm:"uniqueIndex;not null"`
	Title          string `json:"title" gorm:"not null"`
	Description    string `json:"description" gorm:"type:text"`
	Body           string `json:"body" gorm:"type:text"` // markdown
	ImageURL       string `json:"image_url"`
	AssetKey       string `json:"-"`               // object key of the downloadable asset
	MonthlyRevenue int64  `json:"monthly_revenue"` // USD

	Categories []Category `json:"categories" gorm:"many2many:example_categories"`
	Comments   []Comment  `json:"-"`
}

type Category struct {
	gorm.Model
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`

	Examples []Example `json:"-" gorm:"many2many:example_categories"`
}
