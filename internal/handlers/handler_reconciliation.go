package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/templetrust/templeledger/internal/apperrors"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/core/services"
	"github.com/templetrust/templeledger/internal/dto"
	"github.com/templetrust/templeledger/internal/middleware"
)

// reconciliationHandler handles HTTP requests for bank reconciliation.
type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

// registerReconciliationRoutes registers routes related to bank reconciliation.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconService portssvc.ReconciliationSvcFacade) {
	h := &reconciliationHandler{reconService: reconService}

	recon := rg.Group("/reconciliation")
	{
		recon.POST("/statements", h.importStatement)
		recon.POST("/automatch", h.autoMatch)
		recon.POST("/matches", h.manualMatch)
		recon.DELETE("/matches/:id", h.unmatch)
		recon.GET("/outstanding", h.outstanding)
	}
}

func (h *reconciliationHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	inserted, err := h.reconService.ImportStatementLines(c.Request.Context(), req, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNotBankAccount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to import statement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import statement"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": inserted})
}

func (h *reconciliationHandler) autoMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AutoMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AutoMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.reconService.AutoMatch(c.Request.Context(), req.AccountCode, req.WindowDays, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNotBankAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to run automatic matching", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run automatic matching"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.AutoMatchResponse{
		Matches:   dto.ToMatchResponses(result.Matches),
		Ambiguous: result.Ambiguous,
		Unmatched: result.Unmatched,
	})
}

func (h *reconciliationHandler) manualMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ManualMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	match, err := h.reconService.ManualMatch(c.Request.Context(), req.StatementLineID, req.JournalLineID, actorID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyMatched):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrMatchedReversed), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record manual match", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record manual match"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToMatchResponse(match))
}

func (h *reconciliationHandler) unmatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	matchID := c.Param("id")

	if err := h.reconService.Unmatch(c.Request.Context(), matchID, actorID(c)); err != nil {
		if errors.Is(err, services.ErrLineNotMatched) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		} else {
			logger.Error("Failed to remove match", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove match"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *reconciliationHandler) outstanding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountCode := c.Query("account")
	if accountCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account query parameter is required"})
		return
	}
	asOf, err := parseDateQuery(c, "asOf", time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.reconService.Outstanding(c.Request.Context(), accountCode, asOf)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNotBankAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to list outstanding items", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list outstanding items"})
		}
		return
	}
	c.JSON(http.StatusOK, items)
}
