package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/traitview/traitview/internal/controller"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
)

type ReportController struct {
	reportService       service.ReportService
	notificationService service.NotificationService
}

func NewReportController(reportService service.ReportService, notificationService service.NotificationService) *ReportController {
	return &ReportController{reportService: reportService, notificationService: notificationService}
}

func (c *ReportController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports", c.Report)
	rg.GET("/reports/export", c.Export)
	rg.GET("/notifications", c.Notifications)
}

// Report godoc
// @Summary (Admin) Aggregated application report
// @Tags Admin - Reports
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Param status query string false "pending, in_progress or completed"
// @Param test_id query int false "Test ID"
// @Success 200 {object} dto.ReportDataDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid filters"
// @Router /admin/reports [get]
func (c *ReportController) Report(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	var query dto.ReportQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.reportService.Build(ctx.Request.Context(), companyID, query)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Export godoc
// @Summary (Admin) Download the report
// @Tags Admin - Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Param status query string false "pending, in_progress or completed"
// @Param test_id query int false "Test ID"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse "Invalid format or filters"
// @Router /admin/reports/export [get]
func (c *ReportController) Export(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	var query dto.ReportQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	file, err := c.reportService.Export(ctx.Request.Context(), companyID, query, ctx.Query("format"))
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	ctx.Data(http.StatusOK, file.ContentType, file.Body)
}

// Notifications godoc
// @Summary (Admin) Latest notifications
// @Tags Admin - Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.NotificationResponseDTO
// @Router /admin/notifications [get]
func (c *ReportController) Notifications(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	resp, err := c.notificationService.List(ctx.Request.Context(), companyID)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
