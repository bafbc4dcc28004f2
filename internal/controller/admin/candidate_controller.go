package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/traitview/traitview/internal/controller"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
)

type CandidateController struct {
	candidateService service.CandidateService
}

func NewCandidateController(candidateService service.CandidateService) *CandidateController {
	return &CandidateController{candidateService: candidateService}
}

func (c *CandidateController) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	candidates := rg.Group("/candidates")
	candidates.GET("", c.List)
	candidates.POST("", write, c.Create)
	candidates.PUT("/:id", write, c.Update)
	candidates.PATCH("/:id/status", write, c.UpdateStatus)
	candidates.DELETE("/:id", write, c.Delete)
}

// Create godoc
// @Summary (Admin) Register a candidate
// @Tags Admin - Candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param candidate body dto.CandidateCreateDTO true "Candidate"
// @Success 201 {object} dto.CandidateResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /admin/candidates [post]
func (c *CandidateController) Create(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	var req dto.CandidateCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.candidateService.Create(ctx.Request.Context(), companyID, req)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary (Admin) List candidates
// @Tags Admin - Candidates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.CandidateResponseDTO
// @Router /admin/candidates [get]
func (c *CandidateController) List(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	resp, err := c.candidateService.List(ctx.Request.Context(), companyID)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary (Admin) Edit a candidate
// @Tags Admin - Candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Candidate ID"
// @Param candidate body dto.CandidateCreateDTO true "Candidate"
// @Success 200 {object} dto.CandidateResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Candidate not found"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /admin/candidates/{id} [put]
func (c *CandidateController) Update(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CandidateCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.candidateService.Update(ctx.Request.Context(), companyID, id, req)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary (Admin) Move a candidate through the hiring pipeline
// @Tags Admin - Candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Candidate ID"
// @Param status body dto.CandidateStatusUpdateDTO true "New status"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Candidate not found"
// @Router /admin/candidates/{id}/status [patch]
func (c *CandidateController) UpdateStatus(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CandidateStatusUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	if err := c.candidateService.UpdateStatus(ctx.Request.Context(), companyID, id, req.Status); err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Candidate status updated"})
}

// Delete godoc
// @Summary (Admin) Delete a candidate
// @Description Candidates that already received a test cannot be deleted.
// @Tags Admin - Candidates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Candidate ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Candidate not found"
// @Failure 409 {object} dto.ErrorResponse "Candidate has applications"
// @Router /admin/candidates/{id} [delete]
func (c *CandidateController) Delete(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.candidateService.Delete(ctx.Request.Context(), companyID, id); err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
