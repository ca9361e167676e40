package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/middleware"
	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/logging"
	"examplehub_backend/pkg/utils/validator"
)

type CommentInput struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type commentAuthor struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// authorOf shows the email for users who never set a name.
func authorOf(u model.User) commentAuthor {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return commentAuthor{ID: u.ID, Name: name, Email: u.Email}
}

func toCommentResponse(id uint, text string, createdAt time.Time, author model.User) commentResponse {
	return commentResponse{ID: id, Text: text, CreatedAt: createdAt, User: authorOf(author)}
}

type commentResponse struct {
	ID        uint          `json:"id"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
	User      commentAuthor `json:"user"`
}

func ListComments(c *fiber.Ctx) error {
	example, err := findExampleBySlug(c.Params("slug"))
	if err != nil {
		return exampleNotFound(c, err)
	}

	var comments []model.Comment
	err = db().Preload("User").
		Where("example_id = ?", example.ID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		logging.LogError("list_comments_failed", err, map[string]interface{}{"example_id": example.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch comments",
		})
	}

	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm.ID, cm.Text, cm.CreatedAt, cm.User))
	}
	return c.JSON(fiber.Map{
		"comments": out,
	})
}

func PostComment(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return gateError(c, entitlement.ActionComment, entitlement.ErrUnauthenticated)
	}

	input := new(CommentInput)
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

	example, err := findExampleBySlug(c.Params("slug"))
	if err != nil {
		return exampleNotFound(c, err)
	}

	comment, err := deps.Gate.PostComment(c.UserContext(), userID, example.ID, input.Text)
	if err != nil {
		return gateError(c, entitlement.ActionComment, err)
	}

	var author model.User
	if err := db().Select("id", "name", "email").First(&author, userID).Error; err != nil {
		logging.LogError("load_comment_author_failed", err, map[string]interface{}{"user_id": userID})
		author.ID = userID
	}

	recordActivity(userID, model.ActivityComment, map[string]interface{}{
		"example_id": example.ID,
		"comment_id": comment.ID,
	})

	return writeComment(c, toCommentResponse(comment.ID, comment.Text, comment.CreatedAt, author))
}

func writeComment(c *fiber.Ctx, comment commentResponse) error {
	return c.JSON(fiber.Map{
		"comment": comment,
	})
}

// DeleteComment soft-deletes the comment loaded by CheckCommentOwnership.
func DeleteComment(c *fiber.Ctx) error {
	comment, ok := c.Locals("comment").(*model.Comment)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Comment not found",
		})
	}

	if err := db().Delete(comment).Error; err != nil {
		logging.LogError("delete_comment_failed", err, map[string]interface{}{"comment_id": comment.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete comment",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Comment deleted",
	})
}
