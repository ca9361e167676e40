package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/middleware"
	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/logging"
)

func ListFavorites(c *fiber.Ctx) error {
	var favorites []model.Favorite
	err := db().Preload("Example.Categories").
		Joins("JOIN examples ON examples.id = favorites.example_id AND examples.deleted_at IS NULL").
		Where("favorites.user_id = ?", middleware.CurrentUserID(c)).
		Order("favorites.created_at DESC").
		Find(&favorites).Error
	if err != nil {
		logging.LogError("list_favorites_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch favorites",
		})
	}

	out := make([]exampleResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, toExampleResponse(f.Example, false))
	}
	return c.JSON(fiber.Map{
		"favorites": out,
	})
}

// GetFavoriteStatus answers false for anonymous visitors instead of 401 so
// example pages can render the button either way.
func GetFavoriteStatus(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	exampleID, ok := parseID(c, "exampleId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid example ID",
		})
	}
	if userID == 0 {
		return c.JSON(fiber.Map{"isFavorite": false})
	}

	var count int64
	if err := db().Model(&model.Favorite{}).
		Where("user_id = ? AND example_id = ?", userID, exampleID).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check favorite",
		})
	}
	return c.JSON(fiber.Map{"isFavorite": count > 0})
}

func AddFavorite(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return gateError(c, entitlement.ActionSave, entitlement.ErrUnauthenticated)
	}

	exampleID, ok := parseID(c, "exampleId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid example ID",
		})
	}

	var example model.Example
	if err := db().Select("id", "slug").First(&example, exampleID).Error; err != nil {
		return exampleNotFound(c, err)
	}

	result, err := deps.Gate.AddFavorite(c.UserContext(), userID, exampleID)
	if err != nil {
		return gateError(c, entitlement.ActionSave, err)
	}

	if result.AlreadyFavorited {
		return c.JSON(fiber.Map{
			"message":    "Already favorited",
			"isFavorite": true,
		})
	}

	recordActivity(userID, model.ActivityFavorite, map[string]interface{}{
		"example_id":   example.ID,
		"example_slug": example.Slug,
	})

	return c.JSON(fiber.Map{
		"message":    "Added to favorites",
		"isFavorite": true,
	})
}

// RemoveFavorite is never gated and succeeds whether or not the favorite
// existed.
func RemoveFavorite(c *fiber.Ctx) error {
	exampleID, ok := parseID(c, "exampleId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid example ID",
		})
	}

	err := db().Where("user_id = ? AND example_id = ?", middleware.CurrentUserID(c), exampleID).
		Delete(&model.Favorite{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.LogError("remove_favorite_failed", err, map[string]interface{}{"example_id": exampleID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove favorite",
		})
	}

	return c.JSON(fiber.Map{
		"message":    "Removed from favorites",
		"isFavorite": false,
	})
}
