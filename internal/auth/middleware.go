package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
)

// Middleware parses the bearer token and scopes the resulting Session to
// the request.
func Middleware(issuer *Issuer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if header == "" || !found || tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: ErrMissingToken.Error()})
			return
		}

		s, err := issuer.Parse(tokenString)
		if err != nil {
			log.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Rejected admin token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: ErrInvalidToken.Error()})
			return
		}

		Initialize(ctx, s)
		defer Teardown(ctx)
		ctx.Next()
	}
}

var errForbidden = errors.New("insufficient role")

// RequireRole must run after Middleware.
func RequireRole(min Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s, ok := FromContext(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: ErrMissingToken.Error()})
			return
		}
		if !s.Role.AtLeast(min) {
			log.Warn().Uint("userID", s.UserID).Str("role", string(s.Role)).Str("required", string(min)).Msg("Role check failed")
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: errForbidden.Error()})
			return
		}
		ctx.Next()
	}
}
