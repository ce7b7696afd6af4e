package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	portssvc "github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/finbooks/backoffice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles HTTP requests for the invoice lifecycle.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

func newInvoiceHandler(is portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{invoiceService: is}
}

// registerInvoiceRoutes registers routes related to invoices.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(invoiceService)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:number", h.getInvoice)
		invoices.POST("/:number/confirm", h.confirmInvoice)
		invoices.POST("/:number/post", h.postInvoice)
		invoices.POST("/:number/cancel", h.cancelInvoice)
		invoices.POST("/:number/payments", h.recordPayment)
		invoices.POST("/:number/evidence", h.attachEvidence)
	}
}

// createInvoice godoc
// @Summary Create a draft invoice
// @Description Creates a draft invoice with its lines; the total is derived from the lines
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to create invoice"
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, actorFromRequest(c))
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create invoice", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

// getInvoice godoc
// @Summary Get an invoice by number
// @Description Retrieves an invoice with its lines
// @Tags invoices
// @Produce  json
// @Param   number path string true "Invoice number"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to retrieve invoice"
// @Router /invoices/{number} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		} else {
			logger.Error("Failed to get invoice", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoice"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// listInvoices godoc
// @Summary List invoices
// @Description Lists invoices newest first with pagination
// @Tags invoices
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 500 {object} map[string]string "Failed to list invoices"
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list invoices", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invoices"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListInvoicesResponse(invoices))
}

// confirmInvoice godoc
// @Summary Confirm a draft invoice
// @Description Transitions a draft invoice to confirmed, freezing the recomputed total
// @Tags invoices
// @Produce  json
// @Param   number path string true "Invoice number"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invoice total not positive"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Failure 500 {object} map[string]string "Failed to confirm invoice"
// @Router /invoices/{number}/confirm [post]
func (h *invoiceHandler) confirmInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	invoice, err := h.invoiceService.Confirm(c.Request.Context(), number, actorFromRequest(c))
	if err != nil {
		h.writeTransitionError(c, logger, err, "Failed to confirm invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// postInvoice godoc
// @Summary Post a confirmed invoice to the ledger
// @Description Derives the balanced journal entry from the invoice total, posts it idempotently and links the receipt
// @Tags invoices
// @Produce  json
// @Param   number path string true "Invoice number"
// @Success 200 {object} dto.PostingReceiptResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not confirmed"
// @Failure 500 {object} map[string]string "Failed to post invoice"
// @Router /invoices/{number}/post [post]
func (h *invoiceHandler) postInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	receipt, err := h.invoiceService.PostToLedger(c.Request.Context(), number, actorFromRequest(c))
	if err != nil {
		h.writeTransitionError(c, logger, err, "Failed to post invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToPostingReceiptResponse(receipt))
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Description Cancels an invoice; a posted invoice has its linked journal entry voided first
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   number path string true "Invoice number"
// @Param   cancel body dto.CancelInvoiceRequest false "Cancellation reason"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice cannot be cancelled from its current status"
// @Failure 500 {object} map[string]string "Failed to cancel invoice"
// @Router /invoices/{number}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	// The body is optional; an absent or malformed body means no reason given.
	var req dto.CancelInvoiceRequest
	_ = c.ShouldBindJSON(&req)

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), number, req.Reason, actorFromRequest(c))
	if err != nil {
		h.writeTransitionError(c, logger, err, "Failed to cancel invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// recordPayment godoc
// @Summary Record a payment
// @Description Adds a payment to a posted invoice; the invoice flips to paid once the paid amount reaches the total
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   number path string true "Invoice number"
// @Param   payment body dto.RecordPaymentRequest true "Payment amount"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not posted"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Router /invoices/{number}/payments [post]
func (h *invoiceHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), number, req.Amount, actorFromRequest(c))
	if err != nil {
		h.writeTransitionError(c, logger, err, "Failed to record payment")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// attachEvidence godoc
// @Summary Attach evidence to an invoice
// @Description Stores an uploaded file as supporting evidence for a confirmed or later invoice
// @Tags invoices
// @Accept  multipart/form-data
// @Produce  json
// @Param   number path string true "Invoice number"
// @Param   file formData file true "Evidence file"
// @Success 201 {object} dto.AttachmentResponse
// @Failure 400 {object} map[string]string "Missing file"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is still a draft"
// @Failure 500 {object} map[string]string "Failed to store evidence"
// @Router /invoices/{number}/evidence [post]
func (h *invoiceHandler) attachEvidence(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	number := c.Param("number")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing evidence file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded evidence", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store evidence"})
		return
	}
	defer file.Close()

	attachmentID, err := h.invoiceService.AttachEvidence(c.Request.Context(), number, fileHeader.Filename, file)
	if err != nil {
		h.writeTransitionError(c, logger, err, "Failed to store evidence")
		return
	}

	c.JSON(http.StatusCreated, dto.AttachmentResponse{AttachmentID: attachmentID})
}

// writeTransitionError maps lifecycle errors to HTTP responses.
func (h *invoiceHandler) writeTransitionError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
	case errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrUnbalanced):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStateTransition) || errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrAlreadyVoided):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
