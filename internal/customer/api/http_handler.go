package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/retail-pos/internal/customer/domain"
	"github.com/ridloal/retail-pos/internal/customer/repository"
	"github.com/ridloal/retail-pos/internal/customer/service"
	"github.com/ridloal/retail-pos/internal/platform/logger"
)

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(cs service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customerRoutes := router.Group("/customers")
	{
		customerRoutes.GET("", h.ListCustomers)
		customerRoutes.GET("/mobile/:mobile", h.GetByMobile)
		customerRoutes.POST("", h.UpsertCustomer)
	}
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customerService.ListCustomers(c.Request.Context())
	if err != nil {
		logger.Error("ListCustomers: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve customers", "code": "INTERNAL"})
		return
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) GetByMobile(c *gin.Context) {
	customer, err := h.customerService.GetByMobile(c.Request.Context(), c.Param("mobile"))
	if err != nil {
		h.handleError(c, "GetByMobile", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) UpsertCustomer(c *gin.Context) {
	var req domain.UpsertCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error(), "code": "VALIDATION"})
		return
	}
	customer, err := h.customerService.UpsertCustomer(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, "UpsertCustomer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) handleError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCustomer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION"})
	case errors.Is(err, repository.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
	default:
		logger.Error(op+": service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process customer request", "code": "INTERNAL"})
	}
}
