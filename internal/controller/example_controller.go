package controller

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"examplehub_backend/internal/model"
	"examplehub_backend/pkg/logging"
)

const (
	defaultPageSize = 9
	maxPageSize     = 50
	relatedLimit    = 6
)

type categoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type exampleResponse struct {
	ID             uint               `json:"id"`
	Slug           string             `json:"slug"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Body           string             `json:"body,omitempty"`
	ImageURL       string             `json:"imageUrl"`
	MonthlyRevenue int64              `json:"monthlyRevenue"`
	HasAsset       bool               `json:"hasAsset"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	Categories     []categoryResponse `json:"categories"`
}

type exampleLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func toExampleResponse(e model.Example, withBody bool) exampleResponse {
	resp := exampleResponse{
		ID:             e.ID,
		Slug:           e.Slug,
		Title:          e.Title,
		Description:    e.Description,
		ImageURL:       e.ImageURL,
		MonthlyRevenue: e.MonthlyRevenue,
		HasAsset:       e.AssetKey != "",
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		Categories:     make([]categoryResponse, 0, len(e.Categories)),
	}
	if withBody {
		resp.Body = e.Body
	}
	for _, cat := range e.Categories {
		resp.Categories = append(resp.Categories, categoryResponse{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	}
	return resp
}

// pageSize reads ?take, falling back to the default for missing or bad values.
func pageSize(c *fiber.Ctx) int {
	take, err := strconv.Atoi(c.Query("take"))
	if err != nil || take <= 0 {
		return defaultPageSize
	}
	if take > maxPageSize {
		return maxPageSize
	}
	return take
}

// ListExamples pages through examples newest first. The cursor is the id of
// the last example of the previous page.
func ListExamples(c *fiber.Ctx) error {
	take := pageSize(c)

	query := db().Model(&model.Example{}).Preload("Categories")

	if category := c.Query("category"); category != "" {
		query = query.Where(
			"examples.id IN (?)",
			db().Table("example_categories").
				Select("example_categories.example_id").
				Joins("JOIN categories ON categories.id = example_categories.category_id").
				Where("categories.slug = ?", category),
		)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("examples.title ILIKE ? OR examples.description ILIKE ?", like, like)
	}

	if cursor := c.Query("cursor"); cursor != "" {
		cursorID, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid cursor",
			})
		}
		query = query.Where("examples.id < ?", cursorID)
	}

	var examples []model.Example
	if err := query.Order("examples.id DESC").Limit(take + 1).Find(&examples).Error; err != nil {
		logging.LogError("list_examples_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch examples",
		})
	}

	hasMore := len(examples) > take
	if hasMore {
		examples = examples[:take]
	}

	var nextCursor *string
	if hasMore {
		next := strconv.FormatUint(uint64(examples[len(examples)-1].ID), 10)
		nextCursor = &next
	}

	out := make([]exampleResponse, 0, len(examples))
	for _, e := range examples {
		out = append(out, toExampleResponse(e, false))
	}

	return c.JSON(fiber.Map{
		"examples":   out,
		"nextCursor": nextCursor,
		"hasMore":    hasMore,
	})
}

func findExampleBySlug(slug string) (*model.Example, error) {
	var example model.Example
	if err := db().Preload("Categories").Where("slug = ?", slug).First(&example).Error; err != nil {
		return nil, err
	}
	return &example, nil
}

func exampleNotFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Example not found",
		})
	}
	logging.LogError("load_example_failed", err, map[string]interface{}{"path": c.Path()})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to fetch example",
	})
}

// GetExample returns one example with related examples from the same
// categories and its neighbours in publication order.
func GetExample(c *fiber.Ctx) error {
	example, err := findExampleBySlug(c.Params("slug"))
	if err != nil {
		return exampleNotFound(c, err)
	}

	categoryIDs := make([]uint, 0, len(example.Categories))
	for _, cat := range example.Categories {
		categoryIDs = append(categoryIDs, cat.ID)
	}

	related := []model.Example{}
	if len(categoryIDs) > 0 {
		err := db().Preload("Categories").
			Where("examples.id <> ?", example.ID).
			Where("examples.id IN (?)", db().Table("example_categories").
				Select("example_id").
				Where("category_id IN ?", categoryIDs)).
			Order("examples.created_at DESC").
			Limit(relatedLimit).
			Find(&related).Error
		if err != nil {
			logging.LogError("related_examples_failed", err, map[string]interface{}{"example_id": example.ID})
		}
	}

	var next, previous *exampleLink
	var neighbour model.Example
	if err := db().Where("created_at > ?", example.CreatedAt).Order("created_at ASC").First(&neighbour).Error; err == nil {
		next = &exampleLink{Slug: neighbour.Slug, Title: neighbour.Title}
	}
	neighbour = model.Example{}
	if err := db().Where("created_at < ?", example.CreatedAt).Order("created_at DESC").First(&neighbour).Error; err == nil {
		previous = &exampleLink{Slug: neighbour.Slug, Title: neighbour.Title}
	}

	relatedOut := make([]exampleResponse, 0, len(related))
	for _, r := range related {
		relatedOut = append(relatedOut, toExampleResponse(r, false))
	}

	return c.JSON(fiber.Map{
		"example":  toExampleResponse(*example, true),
		"related":  relatedOut,
		"next":     next,
		"previous": previous,
	})
}

func ListCategories(c *fiber.Ctx) error {
	var rows []struct {
		ID           uint   `json:"id"`
		Name         string `json:"name"`
		Slug         string `json:"slug"`
		ExampleCount int64  `json:"exampleCount"`
	}

	err := db().Table("categories").
		Select("categories.id, categories.name, categories.slug, COUNT(examples.id) AS example_count").
		Joins("LEFT JOIN example_categories ON example_categories.category_id = categories.id").
		Joins("LEFT JOIN examples ON examples.id = example_categories.example_id AND examples.deleted_at IS NULL").
		Where("categories.deleted_at IS NULL").
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		logging.LogError("list_categories_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch categories",
		})
	}

	return c.JSON(rows)
}
