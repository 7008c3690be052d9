package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/retail-pos/internal/platform/logger"
	"github.com/ridloal/retail-pos/internal/report/domain"
	"github.com/ridloal/retail-pos/internal/report/service"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(rs service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reportRoutes := router.Group("/reports")
	{
		reportRoutes.GET("/dashboard", h.Dashboard)
		reportRoutes.GET("/sales", h.SalesReport)
		reportRoutes.GET("/transactions", h.Transactions)
	}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	d, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		handleError(c, "Dashboard", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SalesReport serves /reports/sales?range=&date=&year=&month=&week=
func (h *ReportHandler) SalesReport(c *gin.Context) {
	kind, ok := domain.ParseRangeKind(c.Query("range"))
	if !ok {
		badRequest(c, "Invalid range: "+c.Query("range"))
		return
	}
	q := domain.RangeQuery{Kind: kind}

	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		q.Date = day
	}
	for _, p := range []struct {
		name string
		dest *int
	}{{"year", &q.Year}, {"month", &q.Month}, {"week", &q.Week}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "Invalid "+p.name+": "+raw)
			return
		}
		*p.dest = v
	}

	report, err := h.reportService.SalesReport(c.Request.Context(), q)
	if err != nil {
		handleError(c, "SalesReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Transactions serves /reports/transactions?date=&payment_method=
func (h *ReportHandler) Transactions(c *gin.Context) {
	f := domain.TransactionFilter{PaymentMethod: c.Query("payment_method")}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		f.Date = &day
	}

	report, err := h.reportService.Transactions(c.Request.Context(), f)
	if err != nil {
		handleError(c, "Transactions", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "VALIDATION"})
}

func handleError(c *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrInvalidRange) {
		badRequest(c, err.Error())
		return
	}
	logger.Error(op+" Hdl: service error", err, nil)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report", "code": "INTERNAL"})
}
