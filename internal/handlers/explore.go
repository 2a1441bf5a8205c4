package handlers

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/tsexplorer/internal/models"
)

// Explore handles GET exploration requests
// GET /v1/datasets/:dataset/explore?value_column=xxx&start_date=xxx&end_date=xxx&granularity=xxx
func (h *Handler) Explore(c *fiber.Ctx) error {
	input, err := parseQuery(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return h.executeExplore(c, input)
}

// ExplorePost handles POST exploration requests with JSON body
// POST /v1/datasets/:dataset/explore
func (h *Handler) ExplorePost(c *fiber.Ctx) error {
	input := &models.ExploreRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_JSON",
					Message: "Failed to parse JSON body",
					Details: map[string]interface{}{"error": err.Error()},
				},
			})
		}
	}
	input.Dataset = c.Params("dataset")
	return h.executeExplore(c, input)
}

// Export handles GET /v1/datasets/:dataset/export and returns the filtered
// raw rows as a CSV attachment
func (h *Handler) Export(c *fiber.Ctx) error {
	input, err := parseQuery(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if err := input.Validate(); err != nil {
		return h.handleServiceError(c, err)
	}

	var buf bytes.Buffer
	rows, err := h.explorerService.ExportCSV(c.UserContext(), input, &buf)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename=\""+input.Dataset+".csv\"")
	c.Set("X-Row-Count", strconv.Itoa(rows))
	return c.Send(buf.Bytes())
}

// parseQuery reads an ExploreRequest from the path and query string
func parseQuery(c *fiber.Ctx) (*models.ExploreRequest, error) {
	input := &models.ExploreRequest{}
	if err := c.QueryParser(input); err != nil {
		return nil, &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "Failed to parse query parameters: " + err.Error(),
		}
	}
	input.Dataset = c.Params("dataset")
	return input, nil
}

func (h *Handler) executeExplore(c *fiber.Ctx, input *models.ExploreRequest) error {
	if err := input.Validate(); err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.explorerService.Explore(c.UserContext(), input)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(result)
}
