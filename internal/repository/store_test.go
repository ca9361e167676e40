package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/model"
	"examplehub_backend/internal/repository"
	"examplehub_backend/pkg/plan"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, p plan.Plan, downloads int64) model.User {
	t.Helper()

	u := model.User{
		Name:               "Test User",
		Email:              fmt.Sprintf("%s@example.test", uuid.NewString()),
		Password:           "x",
		Plan:               p,
		DownloadsThisMonth: downloads,
	}
	require.NoError(t, db.Create(&u).Error)
	t.Cleanup(func() {
		db.Where("user_id = ?", u.ID).Delete(&model.DownloadRecord{})
		db.Where("user_id = ?", u.ID).Delete(&model.Favorite{})
		db.Unscoped().Delete(&u)
	})
	return u
}

func createExample(t *testing.T, db *gorm.DB) model.Example {
	t.Helper()

	e := model.Example{Slug: "test-" + uuid.NewString(), Title: "Test Example"}
	require.NoError(t, db.Create(&e).Error)
	t.Cleanup(func() {
		db.Where("example_id = ?", e.ID).Delete(&model.Favorite{})
		db.Unscoped().Delete(&e)
	})
	return e
}

func TestStore_ConcurrentDownloadsSerialize(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, plan.Standard, 9)

	log := logrus.New()
	svc := entitlement.NewService(repository.NewStore(db), nil, log)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Download(context.Background(), user.ID, 1)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, entitlement.ErrLimitExceeded), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, int64(10), reloaded.DownloadsThisMonth)

	var ledger int64
	db.Model(&model.DownloadRecord{}).Where("user_id = ?", user.ID).Count(&ledger)
	assert.Equal(t, int64(1), ledger)
}

func TestStore_DuplicateFavoriteKeepsTxUsable(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, plan.Free, 0)
	example := createExample(t, db)
	store := repository.NewStore(db)

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx entitlement.Tx) error {
		fav := entitlement.Favorite{UserID: user.ID, ExampleID: example.ID, CreatedAt: time.Now()}
		require.NoError(t, tx.CreateFavorite(ctx, fav))
		assert.ErrorIs(t, tx.CreateFavorite(ctx, fav), entitlement.ErrDuplicate)

		n, err := tx.CountFavorites(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_DeletedExampleFreesSaveSlot(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, plan.Free, 0)
	store := repository.NewStore(db)

	var examples []model.Example
	for i := 0; i < 5; i++ {
		e := createExample(t, db)
		examples = append(examples, e)
		require.NoError(t, db.Create(&model.Favorite{UserID: user.ID, ExampleID: e.ID}).Error)
	}

	count := func() int64 {
		var n int64
		err := store.WithinTx(context.Background(), func(ctx context.Context, tx entitlement.Tx) error {
			var err error
			n, err = tx.CountFavorites(ctx, user.ID)
			return err
		})
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, int64(5), count())

	require.NoError(t, db.Delete(&examples[2]).Error)
	assert.Equal(t, int64(4), count())

	svc := entitlement.NewService(store, nil, logrus.New())
	extra := createExample(t, db)
	res, err := svc.AddFavorite(context.Background(), user.ID, extra.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyFavorited)
}

func TestStore_ResetExpiredUsage(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, plan.Standard, 6)
	old := time.Now().Add(-31 * 24 * time.Hour)
	require.NoError(t, db.Model(&user).Update("last_reset_date", old).Error)

	n, err := repository.NewStore(db).ResetExpiredUsage(context.Background(), time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Zero(t, reloaded.DownloadsThisMonth)
	require.NotNil(t, reloaded.LastResetDate)
	assert.True(t, reloaded.LastResetDate.After(old))
}
