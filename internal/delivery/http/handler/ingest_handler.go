package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/carpark-service/internal/pkg/utils"
	"github.com/carpark-service/internal/usecase"
)

// IngestHandler - HTTP handler for triggering the feed pipelines
type IngestHandler struct {
	ingestUC *usecase.IngestUseCase
	logger   *zap.Logger
}

// NewIngestHandler - creates a new IngestHandler
func NewIngestHandler(ingestUC *usecase.IngestUseCase, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingestUC: ingestUC,
		logger:   logger,
	}
}

// Import godoc
// @Summary Run the bulk attribute import
// @Description Streams the attribute feed into the database and rebuilds the geo index. Only one run at a time is admitted.
// @Tags Ingestion
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.ImportResult}
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /v1/carparks/import [post]
func (h *IngestHandler) Import(c *fiber.Ctx) error {
	result, err := h.ingestUC.ImportCarParks(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// SyncAvailability godoc
// @Summary Run an availability sync
// @Description Pulls the live availability feed and applies lot counts to known car parks. Unknown codes are counted as unmatched, never created.
// @Tags Ingestion
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SyncResult}
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /v1/carparks/sync-availability [post]
func (h *IngestHandler) SyncAvailability(c *fiber.Ctx) error {
	result, err := h.ingestUC.SyncAvailability(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
