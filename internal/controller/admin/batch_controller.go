package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/traitview/traitview/internal/controller"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
)

type BatchController struct {
	batchService service.BatchService
}

func NewBatchController(batchService service.BatchService) *BatchController {
	return &BatchController{batchService: batchService}
}

func (c *BatchController) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	batches := rg.Group("/batches")
	batches.GET("", c.List)
	batches.POST("", write, c.Create)
	batches.PUT("/:id", write, c.Update)
	batches.DELETE("/:id", write, c.Delete)
	batches.PATCH("/:id/status", write, c.UpdateStatus)
	batches.POST("/:id/send", write, c.Send)
}

// Create godoc
// @Summary (Admin) Create a batch
// @Tags Admin - Batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param batch body dto.BatchCreateDTO true "Batch"
// @Success 201 {object} dto.BatchResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /admin/batches [post]
func (c *BatchController) Create(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	var req dto.BatchCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.batchService.Create(ctx.Request.Context(), companyID, req)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary (Admin) List batches with their status counts
// @Tags Admin - Batches
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BatchListDTO
// @Router /admin/batches [get]
func (c *BatchController) List(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	resp, err := c.batchService.List(ctx.Request.Context(), companyID)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary (Admin) Edit a batch
// @Description The test can only change while the batch has sent nothing.
// @Tags Admin - Batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Param batch body dto.BatchCreateDTO true "Batch"
// @Success 200 {object} dto.BatchResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Batch or test not found"
// @Failure 409 {object} dto.ErrorResponse "Batch already sent"
// @Router /admin/batches/{id} [put]
func (c *BatchController) Update(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.BatchCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.batchService.Update(ctx.Request.Context(), companyID, id, req)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary (Admin) Delete a batch that sent nothing
// @Tags Admin - Batches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Batch not found"
// @Failure 409 {object} dto.ErrorResponse "Batch has applications"
// @Router /admin/batches/{id} [delete]
func (c *BatchController) Delete(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.batchService.Delete(ctx.Request.Context(), companyID, id); err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpdateStatus godoc
// @Summary (Admin) Activate, pause or expire a batch
// @Tags Admin - Batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Param status body dto.BatchStatusUpdateDTO true "New status"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse "Batch not found"
// @Router /admin/batches/{id}/status [patch]
func (c *BatchController) UpdateStatus(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.BatchStatusUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	if err := c.batchService.UpdateStatus(ctx.Request.Context(), companyID, id, req.Status); err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Batch status updated"})
}

// Send godoc
// @Summary (Admin) Send the batch test to candidates
// @Description Creates one pending application per candidate. Closed, expired or full batches are refused.
// @Tags Admin - Batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Param candidates body dto.BatchSendDTO true "Candidate IDs"
// @Success 201 {array} dto.ApplicationResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Batch or candidate not found"
// @Failure 409 {object} dto.ErrorResponse "Batch closed or full"
// @Router /admin/batches/{id}/send [post]
func (c *BatchController) Send(ctx *gin.Context) {
	companyID, ok := controller.CompanyID(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.BatchSendDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}
	resp, err := c.batchService.Send(ctx.Request.Context(), companyID, id, req)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}
