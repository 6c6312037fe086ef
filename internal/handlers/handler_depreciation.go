package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/templetrust/templeledger/internal/apperrors"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/core/services"
	"github.com/templetrust/templeledger/internal/dto"
	"github.com/templetrust/templeledger/internal/middleware"
)

// depreciationHandler handles HTTP requests for depreciable assets.
type depreciationHandler struct {
	depService portssvc.DepreciationSvcFacade
}

// registerDepreciationRoutes registers routes related to asset depreciation.
func registerDepreciationRoutes(rg *gin.RouterGroup, depService portssvc.DepreciationSvcFacade) {
	h := &depreciationHandler{depService: depService}

	assets := rg.Group("/assets")
	{
		assets.POST("", h.registerAsset)
		assets.GET("/:id", h.getAsset)
		assets.POST("/:id/schedule", h.computeSchedule)
	}
	rg.POST("/schedules/:id/post", h.postScheduleEntry)
}

func (h *depreciationHandler) registerAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterAsset", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	asset, err := h.depService.RegisterAsset(c.Request.Context(), req, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAssetParams),
			errors.Is(err, services.ErrUnknownAccount),
			errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to register asset", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register asset"})
		}
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func (h *depreciationHandler) getAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	assetID := c.Param("id")

	asset, err := h.depService.GetAsset(c.Request.Context(), assetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
		} else {
			logger.Error("Failed to get asset", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve asset"})
		}
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *depreciationHandler) computeSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	assetID := c.Param("id")

	var req dto.ComputeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ComputeSchedule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	schedule, err := h.depService.ComputeSchedule(c.Request.Context(), assetID, req.AsOf, actorID(c))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
		} else {
			logger.Error("Failed to compute schedule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute schedule"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToScheduleEntryResponses(schedule))
}

func (h *depreciationHandler) postScheduleEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	scheduleID := c.Param("id")

	entry, err := h.depService.PostScheduleEntry(c.Request.Context(), scheduleID, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNothingToPost):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrPeriodClosed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to post depreciation charge", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post depreciation charge"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}
