package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/config"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
	"google.golang.org/api/option"
)

// TextGenerator answers a single prompt with plain text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	model *genai.GenerativeModel
}

// NewGeminiGenerator returns nil when GEMINI_API_KEY is not set.
func NewGeminiGenerator(cfg *config.Config) (TextGenerator, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. AI review will be non-functional.")
		return nil, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiGenerator{model: client.GenerativeModel("gemini-1.5-flash")}, nil
}

func (g *geminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", errors.New("gemini returned no text content")
	}
	return strings.TrimSpace(text.String()), nil
}

// ReviewService produces a recruiter-facing summary of a completed
// application. It never touches the stored score.
type ReviewService interface {
	Review(ctx context.Context, companyID, applicationID uint) (*dto.ReviewResponseDTO, error)
}

type reviewService struct {
	appRepo   repository.ApplicationRepository
	generator TextGenerator
}

func NewReviewService(appRepo repository.ApplicationRepository, generator TextGenerator) ReviewService {
	return &reviewService{appRepo: appRepo, generator: generator}
}

func (s *reviewService) Review(ctx context.Context, companyID, applicationID uint) (*dto.ReviewResponseDTO, error) {
	if s.generator == nil {
		return nil, ErrReviewUnavailable
	}
	app, err := s.appRepo.FindByID(ctx, companyID, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "error fetching application")
	}
	results := app.Results.Data()
	if app.Status != model.StatusCompleted || results == nil {
		return nil, ErrNotCompleted
	}

	prompt, ok := reviewPrompt(app, results)
	if !ok {
		return nil, fmt.Errorf("%w: application has no free-text answers", ErrInvalidInput)
	}
	summary, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Uint("applicationID", app.ID).Msg("AI review failed")
		return nil, fmt.Errorf("%w: %v", ErrReviewUnavailable, err)
	}
	log.Info().Uint("applicationID", app.ID).Int("chars", len(summary)).Msg("AI review generated")
	return &dto.ReviewResponseDTO{ApplicationID: app.ID, Summary: summary}, nil
}

// reviewPrompt reports false when there is nothing written to review.
func reviewPrompt(app *model.Application, results *model.Results) (string, bool) {
	var b strings.Builder
	b.WriteString("Você é um especialista em recrutamento e avaliação comportamental.\n")
	b.WriteString("Resuma em até cinco frases, em português, o perfil do candidato com base nas respostas abaixo.\n")
	b.WriteString("Não atribua nota. Destaque pontos fortes e pontos de atenção.\n\n")
	fmt.Fprintf(&b, "Teste: %s\n", app.Test.Title)
	if app.Candidate.Position != "" {
		fmt.Fprintf(&b, "Cargo pretendido: %s\n", app.Candidate.Position)
	}
	b.WriteString("\n")

	written := 0
	for _, q := range app.Test.Questions {
		answer := strings.TrimSpace(results.Answers[q.ID])
		if q.Kind != model.KindFreeText || answer == "" {
			continue
		}
		fmt.Fprintf(&b, "Pergunta: %s\nResposta: %s\n---\n", q.Prompt, answer)
		written++
	}
	return b.String(), written > 0
}
