package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/models"
	"github.com/soltixdb/tsexplorer/internal/services"
)

// Version is reported by the health endpoint
var Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	datasetService  *services.DatasetService
	explorerService *services.ExplorerService
}

// New creates a new handler instance
func New(logger *logging.Logger, datasetService *services.DatasetService, explorerService *services.ExplorerService) *Handler {
	return &Handler{
		logger:          logger,
		datasetService:  datasetService,
		explorerService: explorerService,
	}
}

// statusForCode maps service error codes to HTTP status codes
func statusForCode(code string) int {
	switch code {
	case services.CodeDatasetNotFound:
		return fiber.StatusNotFound
	case services.CodeNoNumericColumn:
		return fiber.StatusUnprocessableEntity
	case services.CodeInvalidColumn, services.CodeInvalidCSV:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// handleServiceError converts err into an error response
func (h *Handler) handleServiceError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		status := statusForCode(svcErr.Code)
		if status >= fiber.StatusInternalServerError {
			logging.ErrorCtx(c.UserContext(), "Request failed", "code", svcErr.Code, "error", err)
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: fiberErr.Message,
			},
		})
	}

	logging.ErrorCtx(c.UserContext(), "Request failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: "Internal server error",
		},
	})
}
