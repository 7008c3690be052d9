package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ridloal/retail-pos/internal/invoice/domain"
	"github.com/ridloal/retail-pos/internal/invoice/service"
	"github.com/ridloal/retail-pos/internal/platform/logger"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(is service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: is}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoiceRoutes := router.Group("/invoices")
	{
		invoiceRoutes.POST("", h.CreateSale)
		invoiceRoutes.GET("", h.ListSales)
		invoiceRoutes.GET("/:id", h.GetSale)
		invoiceRoutes.GET("/:id/receipt", h.GetReceipt)
		invoiceRoutes.DELETE("/:id", h.DeleteSale)
	}
}

func (h *InvoiceHandler) CreateSale(c *gin.Context) {
	var req domain.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("CreateSale Hdl: bad request", err, nil)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error(), "code": "VALIDATION"})
		return
	}

	invoice, err := h.invoiceService.CreateSale(c.Request.Context(), req)
	if err != nil {
		writeError(c, "CreateSale", err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) ListSales(c *gin.Context) {
	invoices, err := h.invoiceService.ListSales(c.Request.Context())
	if err != nil {
		writeError(c, "ListSales", err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetSale(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, "GetSale", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) GetReceipt(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	receipt, err := h.invoiceService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		writeError(c, "GetReceipt", err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *InvoiceHandler) DeleteSale(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	resp, err := h.invoiceService.DeleteSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, "DeleteSale", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func invoiceIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID", "code": "VALIDATION"})
		return "", false
	}
	return id, true
}

// writeError turns a service error into a status and a machine readable
// code. Line errors also report which cart line failed.
func writeError(c *gin.Context, op string, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION"
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrInvoiceNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrInsufficientStock):
		status, code = http.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	default:
		logger.Error(op+" Hdl: unhandled service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process invoice request", "code": "INTERNAL"})
		return
	}

	body := gin.H{"error": err.Error(), "code": code}
	var lineErr *service.LineError
	if errors.As(err, &lineErr) {
		body["line"] = lineErr.Line
	}
	c.JSON(status, body)
}
