package model

import (
	"time"

	"gorm.io/gorm"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/pkg/plan"
)

type User struct {
	gorm.Model
	Name     string    `json:"name" gorm:"size:100"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null"`
	Password string    `json:"-" gorm:"not null"`
	Plan     plan.Plan `json:"plan" gorm:"type:varchar(20);not null;default:'Free'"`

	// Usage counters. downloads/comments this month are zeroed together by
	// the 30-day reset; download_count is lifetime.
	DownloadsThisMonth int64      `json:"downloads_this_month" gorm:"not null;default:0"`
	CommentsThisMonth  int64      `json:"comments_this_month" gorm:"not null;default:0"`
	DownloadCount      int64      `json:"download_count" gorm:"not null;default:0"`
	LastResetDate      *time.Time `json:"last_reset_date"`

	Favorites []Favorite `json:"-"`
	Comments  []Comment  `json:"-"`
}

// Account projects the user onto the fields the entitlement engine works with.
func (u *User) Account() entitlement.Account {
	return entitlement.Account{
		UserID:             u.ID,
		Plan:               u.Plan,
		DownloadsThisMonth: u.DownloadsThisMonth,
		CommentsThisMonth:  u.CommentsThisMonth,
		DownloadCount:      u.DownloadCount,
		LastResetDate:      u.LastResetDate,
		CreatedAt:          u.CreatedAt,
	}
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"plan":  u.Plan,
	}
}
