package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/tsexplorer/internal/models"
	"github.com/soltixdb/tsexplorer/internal/services"
)

// UploadFormField is the multipart field carrying the CSV file
const UploadFormField = "file"

// ListDatasets handles GET /v1/datasets
func (h *Handler) ListDatasets(c *fiber.Ctx) error {
	datasets := h.datasetService.List()

	resp := models.DatasetListResponse{
		Datasets: make([]models.DatasetResponse, 0, len(datasets)),
	}
	for _, ds := range datasets {
		resp.Datasets = append(resp.Datasets, ds.Response())
	}
	return c.JSON(resp)
}

// GetDataset handles GET /v1/datasets/:dataset
func (h *Handler) GetDataset(c *fiber.Ctx) error {
	ds, err := h.datasetService.Get(c.Params("dataset"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(ds.Response())
}

// DeleteDataset handles DELETE /v1/datasets/:dataset
func (h *Handler) DeleteDataset(c *fiber.Ctx) error {
	if err := h.datasetService.Delete(c.UserContext(), c.Params("dataset")); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadDataset handles POST /v1/datasets as multipart/form-data with a
// "file" field holding the CSV
func (h *Handler) UploadDataset(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(UploadFormField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "multipart field \"file\" with a CSV is required",
			},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.handleServiceError(c, services.NewServiceErrorWithDetails(services.CodeInvalidCSV, "Failed to open upload", map[string]interface{}{
			"error": err.Error(),
		}))
	}
	defer func() { _ = file.Close() }()

	ds, err := h.datasetService.Upload(c.UserContext(), fileHeader.Filename, file)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ds.Response())
}
