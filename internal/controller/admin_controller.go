package controller

import (
	"errors"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/logging"
	"examplehub_backend/pkg/plan"
	"examplehub_backend/pkg/utils/image"
	"examplehub_backend/pkg/utils/slug"
	"examplehub_backend/pkg/utils/storage"
	"examplehub_backend/pkg/utils/validation"
	"examplehub_backend/pkg/utils/validator"
)

const (
	defaultAdminPageSize = 100
	recentActivityLimit  = 10
)

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

func pageParams(c *fiber.Ctx) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > 500 {
		limit = defaultAdminPageSize
	}
	// Keeps (page-1)*limit inside the range Postgres accepts for OFFSET.
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func newPagination(page, limit, got int, total int64) pagination {
	skip := (page - 1) * limit
	return pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		HasMore:    int64(skip+got) < total,
	}
}

func GetAdminStats(c *fiber.Ctx) error {
	var stats struct {
		TotalUsers       int64               `json:"totalUsers"`
		TotalSubscribers int64               `json:"totalSubscribers"`
		TotalExamples    int64               `json:"totalExamples"`
		TotalCategories  int64               `json:"totalCategories"`
		TotalDownloads   int64               `json:"totalDownloads"`
		UsersByPlan      map[plan.Plan]int64 `json:"usersByPlan"`
		Timestamp        time.Time           `json:"timestamp"`
	}

	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&model.User{}, &stats.TotalUsers},
		{&model.Subscriber{}, &stats.TotalSubscribers},
		{&model.Example{}, &stats.TotalExamples},
		{&model.Category{}, &stats.TotalCategories},
		{&model.DownloadRecord{}, &stats.TotalDownloads},
	}
	for _, q := range counts {
		if err := db().Model(q.model).Count(q.dst).Error; err != nil {
			logging.LogError("admin_stats_failed", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch admin stats",
			})
		}
	}

	var byPlan []struct {
		Plan  plan.Plan
		Count int64
	}
	if err := db().Model(&model.User{}).Select("plan, COUNT(*) AS count").Group("plan").Scan(&byPlan).Error; err != nil {
		logging.LogError("admin_stats_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch admin stats",
		})
	}
	stats.UsersByPlan = make(map[plan.Plan]int64, len(byPlan))
	for _, row := range byPlan {
		stats.UsersByPlan[row.Plan] += row.Count
	}
	stats.Timestamp = time.Now().UTC()

	return c.JSON(stats)
}

func ListSubscribers(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	var total int64
	var subscribers []model.Subscriber
	if err := db().Model(&model.Subscriber{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch subscribers",
		})
	}
	if err := db().Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&subscribers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch subscribers",
		})
	}

	return c.JSON(fiber.Map{
		"subscribers": subscribers,
		"pagination":  newPagination(page, limit, len(subscribers), total),
	})
}

func AdminListExamples(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	var total int64
	var examples []model.Example
	if err := db().Model(&model.Example{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch examples",
		})
	}
	if err := db().Preload("Categories").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&examples).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch examples",
		})
	}

	out := make([]exampleResponse, 0, len(examples))
	for _, e := range examples {
		out = append(out, toExampleResponse(e, true))
	}
	return c.JSON(fiber.Map{
		"examples":   out,
		"pagination": newPagination(page, limit, len(examples), total),
	})
}

type ExampleInput struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"required"`
	Body           string `json:"body"`
	ImageURL       string `json:"imageUrl" validate:"omitempty,url"`
	AssetKey       string `json:"assetKey"`
	MonthlyRevenue int64  `json:"monthlyRevenue" validate:"gte=0"`
	CategoryIDs    []uint `json:"categoryIds"`
}

func exampleSlugTaken(candidate string) (bool, error) {
	var n int64
	err := db().Unscoped().Model(&model.Example{}).Where("slug = ?", candidate).Count(&n).Error
	return n > 0, err
}

func AdminCreateExample(c *fiber.Ctx) error {
	input := new(ExampleInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validator.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	exampleSlug, err := slug.Unique(input.Title, exampleSlugTaken)
	if err != nil {
		if errors.Is(err, slug.ErrEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Title must contain letters or digits",
			})
		}
		logging.LogError("example_slug_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create example",
		})
	}

	example := model.Example{
		Slug:           exampleSlug,
		Title:          input.Title,
		Description:    input.Description,
		Body:           input.Body,
		ImageURL:       input.ImageURL,
		AssetKey:       input.AssetKey,
		MonthlyRevenue: input.MonthlyRevenue,
	}

	err = db().Transaction(func(tx *gorm.DB) error {
		if len(input.CategoryIDs) > 0 {
			if err := tx.Find(&example.Categories, input.CategoryIDs).Error; err != nil {
				return err
			}
		}
		return tx.Create(&example).Error
	})
	if err != nil {
		logging.LogError("create_example_failed", err, map[string]interface{}{"slug": exampleSlug})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create example",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toExampleResponse(example, true))
}

func AdminDeleteExample(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid example ID",
		})
	}

	var example model.Example
	if err := db().First(&example, id).Error; err != nil {
		return exampleNotFound(c, err)
	}

	err := db().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("example_id = ?", example.ID).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&example).Error
	})
	if err != nil {
		logging.LogError("delete_example_failed", err, map[string]interface{}{"example_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete example",
		})
	}

	if deps.Storage != nil && isStoredCover(example.ImageURL) {
		if err := deps.Storage.Delete(c.UserContext(), example.ImageURL); err != nil {
			logging.LogError("delete_cover_failed", err, map[string]interface{}{"example_id": id})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Example deleted successfully",
	})
}

func isStoredCover(url string) bool {
	if url == "" || deps.Config == nil {
		return false
	}
	key := storage.ObjectKeyFromURL(deps.Config.Storage.CDNBaseURL, url)
	return key != url && strings.HasPrefix(key, "examples/")
}

// UploadExampleCover validates, re-encodes to WebP and stores a new cover,
// replacing the previous one.
func UploadExampleCover(c *fiber.Ctx) error {
	if deps.Storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "File storage is not configured",
		})
	}

	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid example ID",
		})
	}

	var example model.Example
	if err := db().First(&example, id).Error; err != nil {
		return exampleNotFound(c, err)
	}

	file, err := c.FormFile("cover")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validation.ErrFileRequired.Error(),
		})
	}
	if err := validation.ValidateCover(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	buf, contentType, err := image.ProcessImage(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not process image",
		})
	}

	key := storage.CoverKey(example.Slug, ".webp")
	url, err := deps.Storage.Upload(c.UserContext(), key, buf, contentType)
	if err != nil {
		logging.LogError("cover_upload_failed", err, map[string]interface{}{"example_id": id, "key": key})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload image",
		})
	}

	previous := example.ImageURL
	if err := db().Model(&example).Update("image_url", url).Error; err != nil {
		_ = deps.Storage.Delete(c.UserContext(), key)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save image",
		})
	}

	if isStoredCover(previous) {
		if err := deps.Storage.Delete(c.UserContext(), previous); err != nil {
			logging.LogError("delete_cover_failed", err, map[string]interface{}{"example_id": id, "url": previous})
		}
	}

	return c.JSON(fiber.Map{
		"message":  "Cover uploaded successfully",
		"imageUrl": url,
		"file":     path.Base(key),
	})
}

func AdminListCategories(c *fiber.Ctx) error {
	return ListCategories(c)
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

func categorySlugTaken(candidate string) (bool, error) {
	var n int64
	err := db().Unscoped().Model(&model.Category{}).Where("slug = ?", candidate).Count(&n).Error
	return n > 0, err
}

func AdminCreateCategory(c *fiber.Ctx) error {
	input := new(CategoryInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	categorySlug, err := slug.Unique(input.Name, categorySlugTaken)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category name",
		})
	}

	category := model.Category{Name: input.Name, Slug: categorySlug}
	if err := db().Create(&category).Error; err != nil {
		logging.LogError("create_category_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create category",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(categoryResponse{
		ID:   category.ID,
		Name: category.Name,
		Slug: category.Slug,
	})
}

func GetRecentActivity(c *fiber.Ctx) error {
	var logs []model.ActivityLog
	if err := db().Preload("User").
		Order("created_at DESC").
		Limit(recentActivityLimit).
		Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch activity",
		})
	}

	type activityResponse struct {
		ID        uint                   `json:"id"`
		Type      string                 `json:"type"`
		Metadata  map[string]interface{} `json:"metadata"`
		CreatedAt time.Time              `json:"createdAt"`
		User      map[string]interface{} `json:"user"`
	}

	out := make([]activityResponse, 0, len(logs))
	for _, l := range logs {
		item := activityResponse{ID: l.ID, Type: l.Type, Metadata: l.Metadata, CreatedAt: l.CreatedAt}
		if l.User != nil {
			item.User = l.User.GetPublicProfile()
		}
		out = append(out, item)
	}

	return c.JSON(fiber.Map{
		"activity": out,
	})
}
