package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/logging"
	"examplehub_backend/pkg/utils/validator"
)

type NewsletterSubscriptionInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SubscribeNewsletter adds an email to the newsletter list.
func SubscribeNewsletter(c *fiber.Ctx) error {
	input := new(NewsletterSubscriptionInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}
	input.Email = normalizeEmail(input.Email)
	if err := validator.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email address",
		})
	}

	var existing model.Subscriber
	if err := db().Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already subscribed",
		})
	}

	subscriber := model.Subscriber{Email: input.Email}
	if err := db().Create(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Email already subscribed",
			})
		}
		logging.LogError("newsletter_subscribe_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create subscription",
		})
	}

	sendEmail("newsletter_welcome", func(m Mailer) error {
		return m.SendNewsletterWelcome(subscriber.Email)
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Successfully subscribed",
		"id":      subscriber.ID,
	})
}
