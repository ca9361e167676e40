package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/middleware"
	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/logging"
)

func downloadURLTTL() time.Duration {
	if deps.Config == nil || deps.Config.Storage.DownloadURLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(deps.Config.Storage.DownloadURLMinutes) * time.Minute
}

// DownloadExample spends one download from the user's monthly allowance and
// hands back a URL for the asset.
func DownloadExample(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return gateError(c, entitlement.ActionDownload, entitlement.ErrUnauthenticated)
	}

	example, err := findExampleBySlug(c.Params("slug"))
	if err != nil {
		return exampleNotFound(c, err)
	}

	acc, err := deps.Gate.Download(c.UserContext(), userID, example.ID)
	if err != nil {
		return gateError(c, entitlement.ActionDownload, err)
	}

	downloadURL := example.ImageURL
	if example.AssetKey != "" && deps.Storage != nil {
		signed, err := deps.Storage.PresignDownload(c.UserContext(), example.AssetKey, downloadURLTTL())
		if err != nil {
			// The download is already counted; fall back to the public image.
			logging.LogError("presign_download_failed", err, map[string]interface{}{
				"example_id": example.ID,
				"user_id":    userID,
			})
		} else {
			downloadURL = signed
		}
	}

	recordActivity(userID, model.ActivityDownload, map[string]interface{}{
		"example_id":   example.ID,
		"example_slug": example.Slug,
	})

	return c.JSON(fiber.Map{
		"success":            true,
		"message":            "Download started",
		"downloadUrl":        downloadURL,
		"downloadsThisMonth": acc.DownloadsThisMonth,
		"example":            toExampleResponse(*example, false),
	})
}
