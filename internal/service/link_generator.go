package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/traitview/traitview/config"
)

// LinkGenerator produces the opaque token that grants access to one
// application, and the candidate-facing URL for it.
type LinkGenerator interface {
	NewToken() string
	URL(token string) string
}

type uuidLinkGenerator struct {
	baseURL string
}

func NewLinkGenerator(cfg *config.Config) LinkGenerator {
	return &uuidLinkGenerator{baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}
}

func (g *uuidLinkGenerator) NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (g *uuidLinkGenerator) URL(token string) string {
	return g.baseURL + "/teste/" + token
}
