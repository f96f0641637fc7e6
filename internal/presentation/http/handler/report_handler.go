package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/feedledger-api/internal/application/service"
	"github.com/sangkips/feedledger-api/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves sales and batch reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Sales returns the sales report for start_date..end_date inclusive
func (h *ReportHandler) Sales(c *gin.Context) {
	start, end, ok := reportRange(c)
	if !ok {
		return
	}

	report, err := h.reportService.SalesReport(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales report generated successfully", report)
}

// ExportSales downloads the sales report as an Excel workbook
// @Summary Export sales report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} response.APIResponse
// @Router /reports/sales/export [get]
func (h *ReportHandler) ExportSales(c *gin.Context) {
	start, end, ok := reportRange(c)
	if !ok {
		return
	}

	data, err := h.reportService.ExportSalesXLSX(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("sales_%s_%s.xlsx", start.Format(dateLayout), end.Format(dateLayout))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Batch returns the settlement report for one batch
func (h *ReportHandler) Batch(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "batch")
	if !ok {
		return
	}

	report, err := h.reportService.BatchReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batch report generated successfully", report)
}

// reportRange reads start_date and end_date. Missing values are passed on
// as zero times so the service reports them.
func reportRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, ok := parseDateQuery(c, "start_date")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := parseDateQuery(c, "end_date")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	var from, to time.Time
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	return from, to, true
}
