package middleware

import (
	"github.com/gofiber/fiber/v2"

	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/database"
)

// CheckCommentOwnership lets a request through only when the comment in :id
// belongs to the session user. Must run after AuthMiddleware.
func CheckCommentOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		commentID, err := c.ParamsInt("id")
		if err != nil || commentID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid comment ID",
			})
		}

		var comment model.Comment
		if err := database.DB.First(&comment, commentID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Comment not found",
			})
		}

		if comment.UserID != CurrentUserID(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to modify this comment",
			})
		}

		c.Locals("comment", &comment)
		return c.Next()
	}
}
