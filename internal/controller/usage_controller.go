package controller

import (
	"github.com/gofiber/fiber/v2"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/middleware"
	"examplehub_backend/pkg/plan"
)

func GetUsage(c *fiber.Ctx) error {
	usage, err := deps.Gate.Usage(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return gateError(c, entitlement.Action("usage"), err)
	}
	return c.JSON(usage)
}

func ListPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"plans": plan.All(),
	})
}
