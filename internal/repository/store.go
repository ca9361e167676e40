// Package repository is the Postgres-backed entitlement.Store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/model"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx entitlement.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &gormTx{db: db})
	})
	return translateError(err)
}

// ResetExpiredUsage zeroes the monthly counters of every account whose reset
// anchor is at least one window old and returns how many rows changed.
func (s *Store) ResetExpiredUsage(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("COALESCE(last_reset_date, created_at) <= ?", entitlement.ResetCutoff(now)).
		Updates(map[string]interface{}{
			"downloads_this_month": 0,
			"comments_this_month":  0,
			"last_reset_date":      now,
		})
	if res.Error != nil {
		return 0, translateError(res.Error)
	}
	return res.RowsAffected, nil
}

// translateError maps driver errors onto the entitlement sentinels while
// keeping the driver error in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return fmt.Errorf("%w: %w", entitlement.ErrConflict, err)
		case sqlStateUniqueViolation:
			return fmt.Errorf("%w: %w", entitlement.ErrDuplicate, err)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", entitlement.ErrDuplicate, err)
	}
	return err
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockAccount(ctx context.Context, userID uint) (entitlement.Account, error) {
	var user model.User
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entitlement.Account{}, entitlement.ErrAccountNotFound
	}
	if err != nil {
		return entitlement.Account{}, fmt.Errorf("lock account %d: %w", userID, translateError(err))
	}
	return user.Account(), nil
}

func (t *gormTx) SaveCounters(ctx context.Context, acc entitlement.Account) error {
	res := t.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", acc.UserID).
		Updates(map[string]interface{}{
			"downloads_this_month": acc.DownloadsThisMonth,
			"comments_this_month":  acc.CommentsThisMonth,
			"download_count":       acc.DownloadCount,
			"last_reset_date":      acc.LastResetDate,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return entitlement.ErrAccountNotFound
	}
	return nil
}

// CountFavorites counts only favorites whose example is still published.
func (t *gormTx) CountFavorites(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Joins("JOIN examples ON examples.id = favorites.example_id AND examples.deleted_at IS NULL").
		Where("favorites.user_id = ?", userID).
		Count(&n).Error
	return n, translateError(err)
}

func (t *gormTx) HasFavorite(ctx context.Context, userID, exampleID uint) (bool, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("user_id = ? AND example_id = ?", userID, exampleID).
		Count(&n).Error
	return n > 0, translateError(err)
}

// CreateFavorite inserts with ON CONFLICT DO NOTHING so a duplicate does not
// abort the surrounding Postgres transaction.
func (t *gormTx) CreateFavorite(ctx context.Context, fav entitlement.Favorite) error {
	row := model.Favorite{UserID: fav.UserID, ExampleID: fav.ExampleID, CreatedAt: fav.CreatedAt}
	res := t.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return entitlement.ErrDuplicate
	}
	return nil
}

func (t *gormTx) CountCommentsSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Unscoped().
		Model(&model.Comment{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&n).Error
	return n, translateError(err)
}

func (t *gormTx) CreateComment(ctx context.Context, c *entitlement.Comment) error {
	row := model.Comment{UserID: c.UserID, ExampleID: c.ExampleID, Text: c.Text, CreatedAt: c.CreatedAt}
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return translateError(err)
	}
	c.ID = row.ID
	return nil
}

func (t *gormTx) RecordDownload(ctx context.Context, d entitlement.Download) error {
	row := model.DownloadRecord{UserID: d.UserID, ExampleID: d.ExampleID, CreatedAt: d.CreatedAt}
	return translateError(t.db.WithContext(ctx).Create(&row).Error)
}
