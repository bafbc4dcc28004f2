package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/traitview/traitview/internal/controller"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
)

type ApplicationController struct {
	applicationService service.ApplicationService
	reviewService      service.ReviewService
}

func NewApplicationController(applicationService service.ApplicationService, reviewService service.ReviewService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService, reviewService: reviewService}
}

func (c *ApplicationController) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	apps := rg.Group("/applications")
	apps.GET("", c.List)
	apps.GET("/stats", c.Stats)
	apps.GET("/:id", c.Get)
	apps.POST("", write, c.Create)
	apps.POST("/:id/review", write, c.Review)
}

// Create godoc
// @Summary (Admin) Send a test to a candidate
// @Description Creates a pending application and returns the candidate link.
// @Tags Admin - Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param application body dto.ApplicationCreateDTO true "Candidate and test"
// @Success 201 {object} dto.ApplicationResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Test or candidate not found"
// @Router /admin/applications [post]
func (c *ApplicationController) Create(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	var req dto.ApplicationCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.applicationService.Create(ctx.Request.Context(), companyID, req)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary (Admin) List applications
// @Tags Admin - Applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, in_progress or completed"
// @Param test_id query int false "Test ID"
// @Success 200 {array} dto.ApplicationResponseDTO
// @Router /admin/applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	var query dto.ApplicationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.applicationService.List(ctx.Request.Context(), companyID, query)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary (Admin) Get an application with its results
// @Tags Admin - Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.ApplicationResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.applicationService.Get(ctx.Request.Context(), companyID, id)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Stats godoc
// @Summary (Admin) Application counts by status
// @Tags Admin - Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ApplicationStatsDTO
// @Router /admin/applications/stats [get]
func (c *ApplicationController) Stats(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	resp, err := c.applicationService.Stats(ctx.Request.Context(), companyID)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Review godoc
// @Summary (Admin) AI summary of a completed application
// @Description Summarizes the free-text answers for a recruiter. The score is never changed.
// @Tags Admin - Applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.ReviewResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application not completed"
// @Failure 503 {object} dto.ErrorResponse "AI review not configured"
// @Router /admin/applications/{id}/review [post]
func (c *ApplicationController) Review(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.reviewService.Review(ctx.Request.Context(), companyID, id)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
