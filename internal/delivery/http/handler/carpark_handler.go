package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/carpark-service/internal/pkg/utils"
	"github.com/carpark-service/internal/pkg/validator"
	"github.com/carpark-service/internal/usecase"
	"github.com/carpark-service/internal/usecase/dto"
)

// CarParkHandler - HTTP handler for car park lookups and management
type CarParkHandler struct {
	carParkUC *usecase.CarParkUseCase
	logger    *zap.Logger
}

// NewCarParkHandler - creates a new CarParkHandler
func NewCarParkHandler(carParkUC *usecase.CarParkUseCase, logger *zap.Logger) *CarParkHandler {
	return &CarParkHandler{
		carParkUC: carParkUC,
		logger:    logger,
	}
}

// GetNearest godoc
// @Summary Nearest car parks with free lots
// @Description Returns car parks with available lots around a point, ordered by ascending distance. Served from the geo index when warm, from the database otherwise.
// @Tags CarParks
// @Produce json
// @Param lat query number true "Latitude (WGS84)"
// @Param lon query number true "Longitude (WGS84)"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size (max 100)" default(10)
// @Param radius_km query number false "Search radius in km (max configured)"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearestResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /v1/carparks/nearest [get]
func (h *CarParkHandler) GetNearest(c *fiber.Ctx) error {
	var req dto.NearestRequest
	req.Lat = c.QueryFloat("lat")
	req.Lon = c.QueryFloat("lon")
	req.Page = c.QueryInt("page", 1)
	req.PerPage = c.QueryInt("per_page", 10)
	req.RadiusKm = c.QueryFloat("radius_km")

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.carParkUC.FindNearest(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:   result.Total,
		Page:    req.Page,
		PerPage: req.PerPage,
	})
}

// ListAvailable godoc
// @Summary Car parks with free lots
// @Description Returns one page of car parks that currently report available lots.
// @Tags CarParks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size (max 100)" default(10)
// @Success 200 {object} utils.SuccessResponse{data=dto.AvailableResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /v1/carparks/available [get]
func (h *CarParkHandler) ListAvailable(c *fiber.Ctx) error {
	var req dto.ListAvailableRequest
	req.Page = c.QueryInt("page", 1)
	req.PerPage = c.QueryInt("per_page", 10)

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.carParkUC.ListAvailable(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	})
}

// GetStats godoc
// @Summary Car park store counters
// @Description Returns the number of active car parks and how many of them currently report free lots.
// @Tags CarParks
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.StatsResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /v1/carparks/stats [get]
func (h *CarParkHandler) GetStats(c *fiber.Ctx) error {
	result, err := h.carParkUC.Stats(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// SoftDelete godoc
// @Summary Soft delete a car park
// @Description Marks a car park deleted. The record is kept and can be restored.
// @Tags CarParks
// @Produce json
// @Param code path string true "Car park number"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /v1/carparks/{code} [delete]
func (h *CarParkHandler) SoftDelete(c *fiber.Ctx) error {
	code := c.Params("code")

	if err := h.carParkUC.SoftDelete(c.Context(), code); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"car_park_no": code, "deleted": true}, nil)
}

// Restore godoc
// @Summary Restore a soft-deleted car park
// @Tags CarParks
// @Produce json
// @Param code path string true "Car park number"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /v1/carparks/{code}/restore [post]
func (h *CarParkHandler) Restore(c *fiber.Ctx) error {
	code := c.Params("code")

	if err := h.carParkUC.Restore(c.Context(), code); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{"car_park_no": code, "restored": true}, nil)
}
