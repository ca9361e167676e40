package entitlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"examplehub_backend/pkg/plan"
)

const MaxCommentLength = 1000

var ErrInvalidComment = errors.New("entitlement: comment must be between 1 and 1000 characters")

// Service runs gated actions. Each call locks the user's account row, applies
// the monthly reset, evaluates the plan limit and performs the write in a
// single transaction.
type Service struct {
	store Store
	clock Clock
	log   logrus.FieldLogger
}

func NewService(store Store, clock Clock, log logrus.FieldLogger) *Service {
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, clock: clock, log: log}
}

type FavoriteResult struct {
	AlreadyFavorited bool
	Account          Account
}

// AddFavorite saves exampleID for the user unless the plan's save ceiling is
// reached. Saving an example that is already a favorite is not gated.
func (s *Service) AddFavorite(ctx context.Context, userID, exampleID uint) (FavoriteResult, error) {
	var already bool
	acc, err := s.transact(ctx, userID, ActionSave, func(ctx context.Context, tx Tx, acc *Account, now time.Time) error {
		already = false

		exists, err := tx.HasFavorite(ctx, userID, exampleID)
		if err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}
		if exists {
			already = true
			return nil
		}

		saved, err := tx.CountFavorites(ctx, userID)
		if err != nil {
			return fmt.Errorf("count favorites: %w", err)
		}
		if err := Check(acc.Plan, ActionSave, saved); err != nil {
			return err
		}

		err = tx.CreateFavorite(ctx, Favorite{UserID: userID, ExampleID: exampleID, CreatedAt: now})
		if errors.Is(err, ErrDuplicate) {
			already = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("create favorite: %w", err)
		}
		return nil
	})
	return FavoriteResult{AlreadyFavorited: already, Account: acc}, err
}

// Download consumes one unit of the monthly download allowance and records
// the download in the ledger.
func (s *Service) Download(ctx context.Context, userID, exampleID uint) (Account, error) {
	return s.transact(ctx, userID, ActionDownload, func(ctx context.Context, tx Tx, acc *Account, now time.Time) error {
		if err := Check(acc.Plan, ActionDownload, acc.DownloadsThisMonth); err != nil {
			return err
		}

		acc.DownloadsThisMonth++
		acc.DownloadCount++
		if err := tx.SaveCounters(ctx, *acc); err != nil {
			return fmt.Errorf("save download counters: %w", err)
		}
		if err := tx.RecordDownload(ctx, Download{UserID: acc.UserID, ExampleID: exampleID, CreatedAt: now}); err != nil {
			return fmt.Errorf("record download: %w", err)
		}
		return nil
	})
}

// PostComment creates a comment when the user is below the plan's limit for
// the trailing 24 hours.
func (s *Service) PostComment(ctx context.Context, userID, exampleID uint, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > MaxCommentLength {
		return Comment{}, ErrInvalidComment
	}

	var created Comment
	_, err := s.transact(ctx, userID, ActionComment, func(ctx context.Context, tx Tx, acc *Account, now time.Time) error {
		recent, err := tx.CountCommentsSince(ctx, userID, now.Add(-CommentWindow))
		if err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		if err := Check(acc.Plan, ActionComment, recent); err != nil {
			return err
		}

		c := Comment{UserID: userID, ExampleID: exampleID, Text: text, CreatedAt: now}
		if err := tx.CreateComment(ctx, &c); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}

		acc.CommentsThisMonth++
		if err := tx.SaveCounters(ctx, *acc); err != nil {
			return fmt.Errorf("save comment counter: %w", err)
		}
		created = c
		return nil
	})
	if err != nil {
		return Comment{}, err
	}
	return created, nil
}

// Usage is the read-only view of a user's consumption against their plan.
type Usage struct {
	Plan               plan.Plan   `json:"plan"`
	Limits             plan.Limits `json:"limits"`
	Saves              int64       `json:"saves"`
	DownloadsThisMonth int64       `json:"downloadsThisMonth"`
	CommentsLast24h    int64       `json:"commentsLast24h"`
	CommentsThisMonth  int64       `json:"commentsThisMonth"`
	DownloadCount      int64       `json:"downloadCount"`
	NextReset          time.Time   `json:"nextReset"`
}

// Usage reports current consumption, applying a due monthly reset first so
// the numbers match what the next gated action will see.
func (s *Service) Usage(ctx context.Context, userID uint) (Usage, error) {
	var u Usage
	_, err := s.transact(ctx, userID, "", func(ctx context.Context, tx Tx, acc *Account, now time.Time) error {
		saves, err := tx.CountFavorites(ctx, userID)
		if err != nil {
			return fmt.Errorf("count favorites: %w", err)
		}
		recent, err := tx.CountCommentsSince(ctx, userID, now.Add(-CommentWindow))
		if err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		u = Usage{
			Plan:               acc.Plan,
			Limits:             plan.LimitsFor(acc.Plan),
			Saves:              saves,
			DownloadsThisMonth: acc.DownloadsThisMonth,
			CommentsLast24h:    recent,
			CommentsThisMonth:  acc.CommentsThisMonth,
			DownloadCount:      acc.DownloadCount,
			NextReset:          acc.NextReset(),
		}
		return nil
	})
	return u, err
}

type gatedFunc func(ctx context.Context, tx Tx, acc *Account, now time.Time) error

// transact runs fn under the account lock. A *Denial returned by fn does not
// roll back a reset performed earlier in the same transaction; it is handed
// back to the caller after commit. A conflict is retried once.
func (s *Service) transact(ctx context.Context, userID uint, action Action, fn gatedFunc) (Account, error) {
	if userID == 0 {
		return Account{}, ErrUnauthenticated
	}

	var (
		result Account
		denial *Denial
	)
	attempt := func() error {
		denial = nil
		return s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
			acc, err := tx.LockAccount(ctx, userID)
			if err != nil {
				return err
			}

			now := s.clock.Now()
			if MaybeReset(&acc, now) {
				if err := tx.SaveCounters(ctx, acc); err != nil {
					return fmt.Errorf("persist usage reset: %w", err)
				}
				s.log.WithFields(logrus.Fields{
					"user_id":  userID,
					"reset_at": now,
				}).Info("Monthly usage counters reset")
			}

			if err := fn(ctx, tx, &acc, now); err != nil {
				if d, ok := IsDenial(err); ok {
					denial = d
					result = acc
					return nil
				}
				return err
			}
			result = acc
			return nil
		})
	}

	err := attempt()
	if errors.Is(err, ErrConflict) {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"action":  action,
		}).Warn("Usage transaction conflicted, retrying")
		err = attempt()
	}
	if err != nil {
		return Account{}, err
	}

	if denial != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"action":  denial.Action,
			"plan":    denial.Plan,
			"reason":  denial.reason,
		}).Info("Gated action denied")
		return result, denial
	}
	return result, nil
}
