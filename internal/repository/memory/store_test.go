package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/repository/memory"
	"examplehub_backend/pkg/plan"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	t.Parallel()

	s := memory.New()
	s.PutAccount(entitlement.Account{UserID: 1, Plan: plan.Standard})

	boom := errors.New("boom")
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx entitlement.Tx) error {
		acc, err := tx.LockAccount(ctx, 1)
		require.NoError(t, err)
		acc.DownloadsThisMonth = 7
		require.NoError(t, tx.SaveCounters(ctx, acc))
		require.NoError(t, tx.CreateFavorite(ctx, entitlement.Favorite{UserID: 1, ExampleID: 3}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	acc, ok := s.Account(1)
	require.True(t, ok)
	assert.Zero(t, acc.DownloadsThisMonth)
	assert.Empty(t, s.Favorites(1))
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	t.Parallel()

	s := memory.New()
	s.PutAccount(entitlement.Account{UserID: 1, Plan: plan.Standard})

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx entitlement.Tx) error {
		acc, err := tx.LockAccount(ctx, 1)
		if err != nil {
			return err
		}
		acc.DownloadsThisMonth = 2
		acc.Plan = plan.Premium
		return tx.SaveCounters(ctx, acc)
	})
	require.NoError(t, err)

	acc, _ := s.Account(1)
	assert.Equal(t, int64(2), acc.DownloadsThisMonth)
	assert.Equal(t, plan.Standard, acc.Plan, "SaveCounters must not touch the plan")
}

func TestLockAccount_Missing(t *testing.T) {
	t.Parallel()

	s := memory.New()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx entitlement.Tx) error {
		_, err := tx.LockAccount(ctx, 42)
		return err
	})
	assert.ErrorIs(t, err, entitlement.ErrAccountNotFound)
}

func TestCreateFavorite_Duplicate(t *testing.T) {
	t.Parallel()

	s := memory.New()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx entitlement.Tx) error {
		require.NoError(t, tx.CreateFavorite(ctx, entitlement.Favorite{UserID: 1, ExampleID: 3}))
		return tx.CreateFavorite(ctx, entitlement.Favorite{UserID: 1, ExampleID: 3})
	})
	assert.ErrorIs(t, err, entitlement.ErrDuplicate)
}

func TestCountCommentsSince(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := memory.New()
	s.AddComment(entitlement.Comment{UserID: 1, CreatedAt: now.Add(-25 * time.Hour)})
	s.AddComment(entitlement.Comment{UserID: 1, CreatedAt: now.Add(-24 * time.Hour)})
	s.AddComment(entitlement.Comment{UserID: 1, CreatedAt: now.Add(-time.Minute)})
	s.AddComment(entitlement.Comment{UserID: 2, CreatedAt: now})

	var n int64
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx entitlement.Tx) error {
		var err error
		n, err = tx.CountCommentsSince(ctx, 1, now.Add(-24*time.Hour))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestFailNextCommits(t *testing.T) {
	t.Parallel()

	s := memory.New()
	s.PutAccount(entitlement.Account{UserID: 1})
	s.FailNextCommits(1)

	write := func(ctx context.Context, tx entitlement.Tx) error {
		return tx.RecordDownload(ctx, entitlement.Download{UserID: 1, ExampleID: 9})
	}

	assert.ErrorIs(t, s.WithinTx(context.Background(), write), entitlement.ErrConflict)
	assert.Empty(t, s.Downloads(1))

	require.NoError(t, s.WithinTx(context.Background(), write))
	assert.Len(t, s.Downloads(1), 1)
}
