package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/middleware"
	"examplehub_backend/internal/model"
	"examplehub_backend/internal/repository"
	"examplehub_backend/pkg/plan"
	"examplehub_backend/pkg/utils/jwt"
)

// withTestDB wires the handlers to the database in TEST_DATABASE_URL.
func withTestDB(t *testing.T) *gorm.DB {
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

	Init(Deps{
		DB:   db,
		Gate: entitlement.NewService(repository.NewStore(db), nil, logrus.New()),
	})
	t.Cleanup(func() { Init(Deps{}) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, p plan.Plan) model.User {
	t.Helper()

	u := model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.test", uuid.NewString()),
		Password: "x",
		Plan:     p,
	}
	require.NoError(t, db.Create(&u).Error)
	t.Cleanup(func() {
		db.Where("user_id = ?", u.ID).Delete(&model.ActivityLog{})
		db.Unscoped().Where("user_id = ?", u.ID).Delete(&model.Comment{})
		db.Where("user_id = ?", u.ID).Delete(&model.Favorite{})
		db.Unscoped().Where("user_id = ?", u.ID).Delete(&model.Purchase{})
		db.Unscoped().Delete(&u)
	})
	return u
}

func seedExample(t *testing.T, db *gorm.DB) model.Example {
	t.Helper()

	e := model.Example{Slug: "test-" + uuid.NewString(), Title: "Test Example"}
	require.NoError(t, db.Create(&e).Error)
	t.Cleanup(func() {
		db.Where("example_id = ?", e.ID).Delete(&model.Favorite{})
		db.Unscoped().Where("example_id = ?", e.ID).Delete(&model.Comment{})
		db.Unscoped().Delete(&e)
	})
	return e
}

func authed(t *testing.T, req *http.Request, u model.User) *http.Request {
	t.Helper()

	jwt.Init("controller-secret", time.Hour)
	token, err := jwt.GenerateToken(u.ID, u.Email, u.Name)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestPostComment_ResponseShape(t *testing.T) {
	db := withTestDB(t)
	user := seedUser(t, db, "", plan.Standard)
	example := seedExample(t, db)

	app := fiber.New()
	app.Post("/examples/:slug/comments", middleware.OptionalAuth(), PostComment)
	app.Get("/examples/:slug/comments", ListComments)

	req := httptest.NewRequest(http.MethodPost, "/examples/"+example.Slug+"/comments", strings.NewReader(`{"text":"Great teardown"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(authed(t, req, user))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	comment, ok := body["comment"].(map[string]interface{})
	require.True(t, ok, "missing comment wrapper: %v", body)
	assert.Equal(t, "Great teardown", comment["text"])
	author := comment["user"].(map[string]interface{})
	assert.Equal(t, user.Email, author["name"])
	assert.Equal(t, user.Email, author["email"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/examples/"+example.Slug+"/comments", nil))
	require.NoError(t, err)
	list := decodeBody(t, resp)["comments"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, user.Email, list[0].(map[string]interface{})["user"].(map[string]interface{})["name"])
}

func TestListFavorites_SkipsDeletedExamples(t *testing.T) {
	db := withTestDB(t)
	user := seedUser(t, db, "Fan", plan.Free)
	kept := seedExample(t, db)
	removed := seedExample(t, db)
	for _, e := range []model.Example{kept, removed} {
		require.NoError(t, db.Create(&model.Favorite{UserID: user.ID, ExampleID: e.ID}).Error)
	}

	admin := fiber.New()
	admin.Delete("/examples/:id", AdminDeleteExample)
	resp, err := admin.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/examples/%d", removed.ID), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var left int64
	db.Model(&model.Favorite{}).Where("example_id = ?", removed.ID).Count(&left)
	assert.Zero(t, left)

	app := fiber.New()
	app.Get("/favorites", middleware.AuthMiddleware(), ListFavorites)
	resp, err = app.Test(authed(t, httptest.NewRequest(http.MethodGet, "/favorites", nil), user))
	require.NoError(t, err)

	favs := decodeBody(t, resp)["favorites"].([]interface{})
	require.Len(t, favs, 1)
	assert.Equal(t, float64(kept.ID), favs[0].(map[string]interface{})["id"])
}

func createPendingPurchase(t *testing.T, db *gorm.DB, u model.User, p plan.Plan) string {
	t.Helper()

	sessionID := "cs_test_" + uuid.NewString()
	require.NoError(t, db.Create(&model.Purchase{
		UserID:          u.ID,
		Plan:            p,
		Amount:          plan.Lookup(p).PriceCents,
		TransactionID:   sessionID,
		StripeSessionID: sessionID,
		Status:          model.PurchaseStatusPending,
	}).Error)
	return sessionID
}

func upgradeActivities(db *gorm.DB, u model.User) int64 {
	var n int64
	db.Model(&model.ActivityLog{}).Where("user_id = ? AND type = ?", u.ID, model.ActivityUpgrade).Count(&n)
	return n
}

func TestCompleteCheckout_Upgrades(t *testing.T) {
	db := withTestDB(t)
	user := seedUser(t, db, "Buyer", plan.Free)
	sessionID := createPendingPurchase(t, db, user, plan.Standard)

	require.NoError(t, completeCheckout(&stripe.CheckoutSession{ID: sessionID}))

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, plan.Standard, reloaded.Plan)
	assert.Equal(t, int64(1), upgradeActivities(db, user))

	// Redelivery is a no-op.
	require.NoError(t, completeCheckout(&stripe.CheckoutSession{ID: sessionID}))
	assert.Equal(t, int64(1), upgradeActivities(db, user))
}

func TestCompleteCheckout_NoUpgradeForLowerPlan(t *testing.T) {
	db := withTestDB(t)
	user := seedUser(t, db, "Premium Buyer", plan.Premium)
	sessionID := createPendingPurchase(t, db, user, plan.Standard)

	require.NoError(t, completeCheckout(&stripe.CheckoutSession{ID: sessionID}))

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, plan.Premium, reloaded.Plan)
	assert.Zero(t, upgradeActivities(db, user))

	var purchase model.Purchase
	require.NoError(t, db.Where("stripe_session_id = ?", sessionID).First(&purchase).Error)
	assert.Equal(t, model.PurchaseStatusCompleted, purchase.Status)
}
