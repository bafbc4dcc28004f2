package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traitview/traitview/internal/model"
	"gorm.io/datatypes"
)

type stubGenerator struct {
	prompt string
	reply  string
	err    error
}

func (g *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func reviewApp() *model.Application {
	app := sessionApp(model.StatusCompleted, model.TestConfig{})
	app.Candidate.Position = "Analista"
	app.Results = datatypes.NewJSONType(&model.Results{
		Answers: map[uint]string{11: "a", 12: "Mediei uma discussão sobre prazos."},
		Score:   50,
	})
	return app
}

func TestReview(t *testing.T) {
	repo := newFakeApplicationRepo(reviewApp())
	gen := &stubGenerator{reply: "Candidata colaborativa."}
	svc := NewReviewService(repo, gen)

	resp, err := svc.Review(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "Candidata colaborativa.", resp.Summary)
	assert.Contains(t, gen.prompt, "Mediei uma discussão sobre prazos.")
	assert.Contains(t, gen.prompt, "Cargo pretendido: Analista")
	assert.NotContains(t, gen.prompt, "Em equipe eu")
	assert.Equal(t, 50, repo.get(1).Results.Data().Score)
}

func TestReviewErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewReviewService(newFakeApplicationRepo(reviewApp()), nil).Review(ctx, 7, 1)
	assert.ErrorIs(t, err, ErrReviewUnavailable)

	_, err = NewReviewService(newFakeApplicationRepo(reviewApp()), &stubGenerator{}).Review(ctx, 8, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	pending := sessionApp(model.StatusPending, model.TestConfig{})
	_, err = NewReviewService(newFakeApplicationRepo(pending), &stubGenerator{}).Review(ctx, 7, 1)
	assert.ErrorIs(t, err, ErrNotCompleted)

	noText := reviewApp()
	noText.Results = datatypes.NewJSONType(&model.Results{Answers: map[uint]string{11: "a"}})
	_, err = NewReviewService(newFakeApplicationRepo(noText), &stubGenerator{}).Review(ctx, 7, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewReviewService(newFakeApplicationRepo(reviewApp()), &stubGenerator{err: errors.New("quota")}).Review(ctx, 7, 1)
	assert.ErrorIs(t, err, ErrReviewUnavailable)
}
