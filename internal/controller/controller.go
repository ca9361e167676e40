package controller

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"gorm.io/gorm"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/config"
	"examplehub_backend/pkg/email"
	"examplehub_backend/pkg/logging"
)

// ObjectStore is the subset of the R2 client the handlers use.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, urlOrKey string) error
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Mailer interface {
	SendWelcomeEmail(email, name string) error
	SendPlanUpgradedEmail(email string, data email.PlanUpgradedData) error
	SendPlanCancelledEmail(email, name, planName string) error
	SendNewsletterWelcome(email string) error
}

// Deps are the collaborators shared by every handler. Storage and Mailer
// may be nil when the feature is not configured.
type Deps struct {
	DB      *gorm.DB
	Gate    *entitlement.Service
	Storage ObjectStore
	Mailer  Mailer
	Config  *config.Config
}

var deps Deps

func Init(d Deps) {
	deps = d
	if d.Config != nil && d.Config.Stripe.Enabled() {
		stripe.Key = d.Config.Stripe.SecretKey
	}
}

func db() *gorm.DB {
	return deps.DB
}

var signInMessages = map[entitlement.Action]string{
	entitlement.ActionSave:     "Please sign in to continue",
	entitlement.ActionDownload: "Please sign in to download",
	entitlement.ActionComment:  "Please sign in to comment",
}

var failureMessages = map[entitlement.Action]string{
	entitlement.ActionSave:     "Failed to add favorite",
	entitlement.ActionDownload: "Failed to process download",
	entitlement.ActionComment:  "Failed to create comment",
}

// gateError writes the HTTP response for an error returned by a gated
// action.
func gateError(c *fiber.Ctx, action entitlement.Action, err error) error {
	if d, ok := entitlement.IsDenial(err); ok {
		title := "Limit reached"
		if action == entitlement.ActionDownload {
			title = "Download not allowed"
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":           title,
			"message":         d.UpgradeMessage,
			"requiresUpgrade": d.RequiresUpgrade,
			"deniedAction":    d.Action,
			"currentPlan":     d.Plan,
		})
	}

	switch {
	case errors.Is(err, entitlement.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Unauthorized",
			"message": signInMessages[action],
		})
	case errors.Is(err, entitlement.ErrAccountNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	case errors.Is(err, entitlement.ErrInvalidComment):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Comment must be between 1 and 1000 characters",
		})
	}

	logging.LogError("gated_action_failed", err, map[string]interface{}{
		"action": action,
		"path":   c.Path(),
	})
	msg, ok := failureMessages[action]
	if !ok {
		msg = "Internal server error"
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// recordActivity writes an activity log row. Failures are logged and
// otherwise ignored.
func recordActivity(userID uint, kind string, metadata map[string]interface{}) {
	entry := model.NewActivity(userID, kind, metadata)
	if err := db().Create(&entry).Error; err != nil {
		logging.LogError("activity_log_failed", err, map[string]interface{}{
			"user_id": userID,
			"type":    kind,
		})
	}
}

// sendEmail delivers mail off the request path.
func sendEmail(kind string, send func(Mailer) error) {
	if deps.Mailer == nil {
		logrus.WithField("email", kind).Debug("Mailer not configured, skipping email")
		return
	}
	go func() {
		if err := send(deps.Mailer); err != nil {
			logging.LogError("email_send_failed", err, map[string]interface{}{"email": kind})
		}
	}()
}
