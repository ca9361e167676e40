package model

import (
	"gorm.io/gorm"

	"examplehub_backend/pkg/plan"
)

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusCancelled = "cancelled"
)

type Purchase struct {
	gorm.Model
	UserID               uint      `json:"user_id" gorm:"not null;index"`
	Plan                 plan.Plan `json:"plan" gorm:"type:varchar(20);not null"`
	Amount               int64     `json:"amount"` // cents
	Currency             string    `json:"currency" gorm:"size:3;default:'usd'"`
	TransactionID        string    `json:"transaction_id" gorm:"uniqueIndex;not null"`
	StripeSessionID      string    `json:"stripe_session_id" gorm:"index"`
	StripeSubscriptionID string    `json:"stripe_subscription_id" gorm:"index"`
	Status               string    `json:"status" gorm:"size:20;default:'pending'"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
