package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/auth"
	"github.com/traitview/traitview/internal/dto"
)

// AuthController issues admin tokens outside production, where no identity
// provider is wired in.
type AuthController struct {
	issuer *auth.Issuer
}

func NewAuthController(issuer *auth.Issuer) *AuthController {
	return &AuthController{issuer: issuer}
}

// IssueToken godoc
// @Summary (Dev) Issue an admin token
// @Description Only mounted when APP_ENV is not production.
// @Tags Auth
// @Accept json
// @Produce json
// @Param identity body dto.TokenRequestDTO true "User, tenant and role"
// @Success 200 {object} dto.TokenResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Token could not be signed"
// @Router /auth/token [post]
func (c *AuthController) IssueToken(ctx *gin.Context) {
	var req dto.TokenRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		WriteBindError(ctx, err)
		return
	}
	token, err := c.issuer.Issue(auth.Session{UserID: req.UserID, TenantID: req.TenantID, Role: auth.Role(req.Role)})
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to issue token", Details: []string{err.Error()}})
		return
	}
	log.Info().Uint("userID", req.UserID).Uint("tenantID", req.TenantID).Str("role", req.Role).Msg("Development token issued")
	ctx.JSON(http.StatusOK, dto.TokenResponseDTO{Token: token})
}
