package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/controller"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
)

type AdminTestController struct {
	adminTestService service.AdminTestService
}

func NewAdminTestController(adminTestService service.AdminTestService) *AdminTestController {
	return &AdminTestController{adminTestService: adminTestService}
}

// RegisterRoutes mounts the test routes. write guards mutating routes.
func (c *AdminTestController) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	tests := rg.Group("/tests")
	tests.GET("", c.ListTests)
	tests.GET("/:id", c.GetTest)
	tests.POST("", write, c.CreateTest)
	tests.PUT("/:id", write, c.UpdateTest)
	tests.PATCH("/:id/status", write, c.UpdateStatus)
	tests.DELETE("/:id", write, c.DeleteTest)
}

// CreateTest godoc
// @Summary (Admin) Create a new test
// @Description Creates a test with all its questions. Display orders must be unique and each kind needs its options.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test_data body dto.TestCreateDTO true "Test with its questions"
// @Success 201 {object} dto.TestResponseDTO "Test created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}

	testResp, err := c.adminTestService.CreateTest(ctx.Request.Context(), companyID, req)
	if err != nil {
		log.Warn().Err(err).Str("title", req.Title).Msg("Admin CreateTest: Service error")
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, testResp)
}

// ListTests godoc
// @Summary (Admin) List tests
// @Tags Admin - Tests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [get]
func (c *AdminTestController) ListTests(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	tests, err := c.adminTestService.ListTests(ctx.Request.Context(), companyID)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTest godoc
// @Summary (Admin) Get a test with its questions
// @Tags Admin - Tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test ID format"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id} [get]
func (c *AdminTestController) GetTest(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	test, err := c.adminTestService.GetTest(ctx.Request.Context(), companyID, id)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// UpdateTest godoc
// @Summary (Admin) Edit a test
// @Description Replaces the test fields and its whole question set. Refused once a candidate has started the test.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param test_data body dto.TestCreateDTO true "Test with its questions"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 409 {object} dto.ErrorResponse "Test already started by a candidate"
// @Router /admin/tests/{id} [put]
func (c *AdminTestController) UpdateTest(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	testResp, err := c.adminTestService.UpdateTest(ctx.Request.Context(), companyID, id, req)
	if err != nil {
		log.Warn().Err(err).Uint("testID", id).Msg("Admin UpdateTest: Service error")
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, testResp)
}

// UpdateStatus godoc
// @Summary (Admin) Publish, unpublish or draft a test
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param status body dto.TestStatusUpdateDTO true "New status"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/tests/{id}/status [patch]
func (c *AdminTestController) UpdateStatus(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.TestStatusUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	if err := c.adminTestService.UpdateStatus(ctx.Request.Context(), companyID, id, req.Status); err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Test status updated"})
}

// DeleteTest godoc
// @Summary (Admin) Delete a test
// @Description Tests that were already sent to a candidate cannot be deleted.
// @Tags Admin - Tests
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 409 {object} dto.ErrorResponse "Test has applications"
// @Router /admin/tests/{id} [delete]
func (c *AdminTestController) DeleteTest(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.adminTestService.DeleteTest(ctx.Request.Context(), companyID, id); err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
