package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	portssvc "github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/finbooks/backoffice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for the posting engine.
type journalHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newJournalHandler(ls portssvc.LedgerSvcFacade) *journalHandler {
	return &journalHandler{ledgerService: ls}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newJournalHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("", h.postEntry)
		ledger.GET("", h.listEntries)
		ledger.GET("/:serial", h.getEntry)
		ledger.POST("/:serial/void", h.voidEntry)
	}
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Validates and posts a balanced journal entry; a repeated idempotency key replays the original receipt
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entry body dto.PostEntryRequest true "Proposed entry"
// @Success 201 {object} dto.PostingReceiptResponse
// @Failure 400 {object} map[string]string "Invalid input or unbalanced entry"
// @Failure 409 {object} map[string]string "Idempotency key reused with a different payload"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Router /ledger [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for postEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	receipt, err := h.ledgerService.Post(c.Request.Context(), req, actorFromRequest(c))
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrUnbalanced) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to post journal entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post entry"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToPostingReceiptResponse(receipt))
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a journal entry with its lines by serial
// @Tags ledger
// @Produce  json
// @Param   serial path int true "Entry serial"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid serial"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Router /ledger/{serial} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	serial, err := strconv.ParseInt(c.Param("serial"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry serial"})
		return
	}

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), serial)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else {
			logger.Error("Failed to get journal entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Lists journal entries newest first with pagination
// @Tags ledger
// @Produce  json
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.EntryResponse
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Router /ledger [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.ledgerService.ListEntries(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToEntryResponse(&entries[i])
	}
	c.JSON(http.StatusOK, responses)
}

// voidEntry godoc
// @Summary Void a journal entry
// @Description Marks a posted entry voided and creates its mirror-image reversal entry
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   serial path int true "Entry serial"
// @Param   void body dto.VoidEntryRequest true "Void reason"
// @Success 201 {object} dto.EntryResponse "The reversal entry"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already voided or not voidable"
// @Failure 500 {object} map[string]string "Failed to void entry"
// @Router /ledger/{serial}/void [post]
func (h *journalHandler) voidEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	serial, err := strconv.ParseInt(c.Param("serial"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry serial"})
		return
	}

	var req dto.VoidEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for voidEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	reversal, err := h.ledgerService.Void(c.Request.Context(), serial, req.Reason, actorFromRequest(c))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else if errors.Is(err, apperrors.ErrAlreadyVoided) || errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to void journal entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to void entry"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}
