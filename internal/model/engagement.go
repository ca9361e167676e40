package model

import (
	"time"

	"gorm.io/gorm"
)

type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_example"`
	ExampleID uint      `json:"example_id" gorm:"not null;uniqueIndex:idx_favorite_user_example;index"`
	CreatedAt time.Time `json:"created_at"`

	Example Example `json:"example" gorm:"foreignKey:ExampleID"`
}

// Comment rows are soft-deleted so removed comments still count against the
// daily comment limit.
type Comment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index:idx_comment_user_created"`
	ExampleID uint           `json:"example_id" gorm:"not null;index"`
	Text      string         `json:"text" gorm:"size:1000;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_comment_user_created"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

// DownloadRecord is the audit ledger of downloads. Gating reads the counter
// on the user row, never this table.
type DownloadRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ExampleID uint      `json:"example_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
