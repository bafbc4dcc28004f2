package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/controller"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
)

type TestSessionController struct {
	sessionService service.TestSessionService
}

func NewTestSessionController(sessionService service.TestSessionService) *TestSessionController {
	return &TestSessionController{sessionService: sessionService}
}

func (c *TestSessionController) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions/:token")
	sessions.GET("", c.Resolve)
	sessions.DELETE("", c.Teardown)
	sessions.PUT("/answers/:question_id", c.RecordAnswer)
	sessions.POST("/navigate", c.Navigate)
	sessions.POST("/submit", c.Submit)
}

// Resolve godoc
// @Summary (Candidate) Open a test by its link
// @Description Resolves the link token. The first visit starts the application; completed links answer with already_completed.
// @Tags Candidate - Sessions
// @Produce json
// @Param token path string true "Link token"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown link"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions/{token} [get]
func (c *TestSessionController) Resolve(ctx *gin.Context) {
	view, err := c.sessionService.Resolve(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// RecordAnswer godoc
// @Summary (Candidate) Answer a question
// @Description Overwrites the in-memory answer. Nothing is persisted until submission.
// @Tags Candidate - Sessions
// @Accept json
// @Produce json
// @Param token path string true "Link token"
// @Param question_id path int true "Question ID"
// @Param answer body dto.AnswerRequest true "Answer value"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid answer"
// @Failure 404 {object} dto.ErrorResponse "Unknown link"
// @Failure 409 {object} dto.ErrorResponse "Session is not active"
// @Router /sessions/{token}/answers/{question_id} [put]
func (c *TestSessionController) RecordAnswer(ctx *gin.Context) {
	questionID, ok := controller.ParseID(ctx, "question_id")
	if !ok {
		return
	}
	var req dto.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}

	view, err := c.sessionService.RecordAnswer(ctx.Request.Context(), ctx.Param("token"), questionID, req.Value)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// Navigate godoc
// @Summary (Candidate) Move to the next or previous question
// @Description Next is refused while the current multiple choice or scale question is unanswered.
// @Tags Candidate - Sessions
// @Accept json
// @Produce json
// @Param token path string true "Link token"
// @Param navigation body dto.NavigateRequest true "next or previous"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Answer required or bad direction"
// @Failure 404 {object} dto.ErrorResponse "Unknown link"
// @Failure 409 {object} dto.ErrorResponse "Session is not active"
// @Router /sessions/{token}/navigate [post]
func (c *TestSessionController) Navigate(ctx *gin.Context) {
	var req dto.NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.WriteBindError(ctx, err)
		return
	}

	view, err := c.sessionService.Navigate(ctx.Request.Context(), ctx.Param("token"), req.Direction)
	if err != nil {
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// Submit godoc
// @Summary (Candidate) Submit the test
// @Description Scores and stores the answers once. Repeating the call is harmless; a 503 can be retried.
// @Tags Candidate - Sessions
// @Produce json
// @Param token path string true "Link token"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown link"
// @Failure 409 {object} dto.ErrorResponse "Session is not active"
// @Failure 503 {object} dto.ErrorResponse "Submission could not be saved, retry"
// @Router /sessions/{token}/submit [post]
func (c *TestSessionController) Submit(ctx *gin.Context) {
	token := ctx.Param("token")
	view, err := c.sessionService.Submit(ctx.Request.Context(), token)
	if err != nil {
		log.Warn().Err(err).Str("linkToken", token).Msg("Submit failed")
		controller.WriteServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// Teardown godoc
// @Summary (Candidate) Leave the test page
// @Description Stops the countdown and drops unsaved answers. The time budget keeps running.
// @Tags Candidate - Sessions
// @Param token path string true "Link token"
// @Success 204
// @Router /sessions/{token} [delete]
func (c *TestSessionController) Teardown(ctx *gin.Context) {
	c.sessionService.Teardown(ctx.Param("token"))
	ctx.Status(http.StatusNoContent)
}
