package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActivitySignup    = "signup"
	ActivityFavorite  = "favorite"
	ActivityDownload  = "download"
	ActivityComment   = "comment"
	ActivityUpgrade   = "upgrade"
	ActivityDowngrade = "downgrade"
)

type ActivityLog struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	UserID    *uint             `json:"user_id" gorm:"index"`
	Type      string            `json:"type" gorm:"size:30;not null;index"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	CreatedAt time.Time         `json:"created_at" gorm:"index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func NewActivity(userID uint, kind string, metadata map[string]interface{}) ActivityLog {
	log := ActivityLog{Type: kind, Metadata: datatypes.JSONMap(metadata)}
	if userID != 0 {
		log.UserID = &userID
	}
	return log
}
