package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"

	"examplehub_backend/internal/middleware"
	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/email"
	"examplehub_backend/pkg/logging"
	"examplehub_backend/pkg/plan"
	"examplehub_backend/pkg/utils/validator"
)

type CheckoutInput struct {
	Plan string `json:"plan" validate:"required,oneof=Standard Premium"`
}

var errPurchaseHandled = errors.New("purchase already processed")

func stripeEnabled() bool {
	return deps.Config != nil && deps.Config.Stripe.Enabled()
}

func siteURL() string {
	if deps.Config == nil {
		return ""
	}
	return deps.Config.Server.SiteURL
}

func formatLimit(l plan.Limit) string {
	if l.IsUnlimited() {
		return "Unlimited"
	}
	return strconv.FormatInt(int64(l), 10)
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// CreateCheckout starts an upgrade. With Stripe configured it returns a
// hosted checkout URL and the upgrade happens in the webhook; otherwise the
// purchase is recorded as paid and the plan changes immediately.
func CreateCheckout(c *fiber.Ctx) error {
	input := new(CheckoutInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if err := validator.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	target := plan.Plan(input.Plan)

	var user model.User
	if err := db().First(&user, middleware.CurrentUserID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if !plan.IsUpgrade(user.Plan, target) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You already have this plan or higher",
		})
	}

	details := plan.Lookup(target)

	if stripeEnabled() {
		return createStripeCheckout(c, &user, details)
	}

	purchase := model.Purchase{
		UserID:        user.ID,
		Plan:          target,
		Amount:        details.PriceCents,
		Currency:      "usd",
		TransactionID: "txn_" + uuid.NewString(),
		Status:        model.PurchaseStatusCompleted,
	}

	err := db().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", user.ID).Update("plan", target).Error
	})
	if err != nil {
		logging.LogError("simulated_checkout_failed", err, map[string]interface{}{
			"user_id": user.ID,
			"plan":    target,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkout",
		})
	}

	afterUpgrade(&user, details, purchase.TransactionID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Successfully upgraded to %s plan", target),
		"purchase": fiber.Map{
			"id":            purchase.ID,
			"plan":          purchase.Plan,
			"amount":        purchase.Amount,
			"transactionId": purchase.TransactionID,
		},
	})
}

func createStripeCheckout(c *fiber.Ctx, user *model.User, details plan.Details) error {
	userRef := strconv.FormatUint(uint64(user.ID), 10)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(userRef),
		SuccessURL:        stripe.String(siteURL() + "/pricing?success=true"),
		CancelURL:         stripe.String(siteURL() + "/pricing?canceled=true"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(details.Name + " Plan"),
					},
					UnitAmount: stripe.Int64(details.PriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("plan", string(details.Plan))
	params.AddMetadata("userId", userRef)

	sess, err := session.New(params)
	if err != nil {
		logging.LogError("stripe_checkout_failed", err, map[string]interface{}{
			"user_id": user.ID,
			"plan":    details.Plan,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkout",
		})
	}

	purchase := model.Purchase{
		UserID:          user.ID,
		Plan:            details.Plan,
		Amount:          details.PriceCents,
		Currency:        "usd",
		TransactionID:   sess.ID,
		StripeSessionID: sess.ID,
		Status:          model.PurchaseStatusPending,
	}
	if err := db().Create(&purchase).Error; err != nil {
		logging.LogError("pending_purchase_failed", err, map[string]interface{}{"session_id": sess.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkout",
		})
	}

	return c.JSON(fiber.Map{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

func afterUpgrade(user *model.User, details plan.Details, transactionID string) {
	recordActivity(user.ID, model.ActivityUpgrade, map[string]interface{}{
		"plan":           details.Plan,
		"amount":         details.PriceCents,
		"transaction_id": transactionID,
	})

	data := email.PlanUpgradedData{
		Name:              user.Name,
		PlanName:          details.Name,
		Price:             formatPrice(details.PriceCents),
		MaxSaves:          formatLimit(details.Limits.MaxSaves),
		MaxDownloads:      formatLimit(details.Limits.MaxDownloadsPerMonth),
		MaxCommentsPerDay: formatLimit(details.Limits.MaxCommentsPerDay),
		SiteURL:           siteURL(),
	}
	to := user.Email
	sendEmail("plan_upgraded", func(m Mailer) error {
		return m.SendPlanUpgradedEmail(to, data)
	})
}

func HandleStripeWebhook(c *fiber.Ctx) error {
	var secret string
	if deps.Config != nil {
		secret = deps.Config.Stripe.WebhookSecret
	}

	event, err := webhook.ConstructEvent(c.Body(), c.Get("Stripe-Signature"), secret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	logrus.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Info("Processing Stripe webhook event")

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid event payload",
			})
		}
		if err := completeCheckout(&sess); err != nil {
			logging.LogError("checkout_completion_failed", err, map[string]interface{}{"session_id": sess.ID})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not complete purchase",
			})
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid event payload",
			})
		}
		if err := cancelSubscription(sub.ID); err != nil {
			logging.LogError("subscription_cancel_failed", err, map[string]interface{}{"subscription_id": sub.ID})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not cancel subscription",
			})
		}

	default:
		logrus.WithField("event_type", event.Type).Debug("Ignoring Stripe webhook event")
	}

	return c.JSON(fiber.Map{"received": true})
}

// completeCheckout marks the pending purchase paid and upgrades the user.
// Stripe redelivers events, so an already completed purchase is a no-op.
func completeCheckout(sess *stripe.CheckoutSession) error {
	var (
		purchase model.Purchase
		user     model.User
		upgraded bool
	)

	err := db().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stripe_session_id = ?", sess.ID).First(&purchase).Error; err != nil {
			return fmt.Errorf("find purchase: %w", err)
		}
		if purchase.Status == model.PurchaseStatusCompleted {
			return errPurchaseHandled
		}

		updates := map[string]interface{}{"status": model.PurchaseStatusCompleted}
		if sess.Subscription != nil {
			updates["stripe_subscription_id"] = sess.Subscription.ID
		}
		if err := tx.Model(&purchase).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.First(&user, purchase.UserID).Error; err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if !plan.IsUpgrade(user.Plan, purchase.Plan) {
			return nil
		}
		if err := tx.Model(&user).Update("plan", purchase.Plan).Error; err != nil {
			return err
		}
		upgraded = true
		return nil
	})
	if errors.Is(err, errPurchaseHandled) {
		return nil
	}
	if err != nil {
		return err
	}

	if !upgraded {
		logrus.WithFields(logrus.Fields{
			"user_id":    user.ID,
			"user_plan":  user.Plan,
			"purchased":  purchase.Plan,
			"session_id": sess.ID,
		}).Warn("Checkout completed for a plan the user already has or exceeds")
		return nil
	}
	afterUpgrade(&user, plan.Lookup(purchase.Plan), purchase.TransactionID)
	return nil
}

// cancelSubscription downgrades the owner of subscriptionID to Free.
// Counters are left alone; the Free limits apply from the next action on.
func cancelSubscription(subscriptionID string) error {
	var purchase model.Purchase
	if err := db().Preload("User").
		Where("stripe_subscription_id = ?", subscriptionID).
		First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithField("subscription_id", subscriptionID).Warn("No purchase for cancelled subscription")
			return nil
		}
		return err
	}
	if purchase.Status == model.PurchaseStatusCancelled {
		return nil
	}

	err := db().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&purchase).Update("status", model.PurchaseStatusCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", purchase.UserID).Update("plan", plan.Free).Error
	})
	if err != nil {
		return err
	}

	recordActivity(purchase.UserID, model.ActivityDowngrade, map[string]interface{}{
		"from":            purchase.Plan,
		"subscription_id": subscriptionID,
	})

	user := purchase.User
	previous := plan.Lookup(purchase.Plan).Name
	sendEmail("plan_cancelled", func(m Mailer) error {
		return m.SendPlanCancelledEmail(user.Email, user.Name, previous)
	})
	return nil
}
