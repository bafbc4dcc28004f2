package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
)

func validTestRequest() dto.TestCreateDTO {
	return dto.TestCreateDTO{
		Title:  "Perfil Comercial",
		Config: dto.TestConfigDTO{TimeLimitMinutes: intPtr(15), ShowResult: true},
		Questions: []dto.QuestionCreateDTO{
			{Prompt: "Prefiro...", Kind: "multiple_choice", Choices: []string{"a", "b"}, DisplayOrder: 1},
			{Prompt: "Conte uma venda difícil", Kind: "free_text", Weight: 2, DisplayOrder: 2},
			{Prompt: "Resiliência", Kind: "scale", ScaleMin: intPtr(1), ScaleMax: intPtr(5), DisplayOrder: 3},
		},
	}
}

func TestCreateTest(t *testing.T) {
	repo := &fakeTestRepo{tests: map[uint]*model.Test{}}
	svc := NewAdminTestService(repo, repo, newFakeApplicationRepo())

	resp, err := svc.CreateTest(context.Background(), 7, validTestRequest())
	require.NoError(t, err)
	assert.Equal(t, "Perfil Comercial", resp.Title)
	require.NotNil(t, resp.Config.TimeLimitMinutes)
	assert.Equal(t, 15, *resp.Config.TimeLimitMinutes)
	assert.True(t, resp.Config.ShowResult)
	require.Len(t, resp.Questions, 3)
	assert.Equal(t, 1.0, resp.Questions[0].Weight)
	assert.Equal(t, 2.0, resp.Questions[1].Weight)
	assert.Equal(t, []string{"a", "b"}, resp.Questions[0].Choices)
	assert.Equal(t, 5, *resp.Questions[2].ScaleMax)

	stored := repo.tests[resp.ID]
	assert.Equal(t, uint(7), stored.CompanyID)

	list, err := svc.ListTests(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].QuestionCount)

	_, err = svc.GetTest(context.Background(), 8, resp.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteTest(context.Background(), 7, resp.ID))
	assert.ErrorIs(t, svc.DeleteTest(context.Background(), 7, resp.ID), ErrNotFound)
}

func TestCreateTestRejectsInvalidQuestions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.TestCreateDTO)
	}{
		{"duplicate order", func(r *dto.TestCreateDTO) { r.Questions[1].DisplayOrder = 1 }},
		{"one choice", func(r *dto.TestCreateDTO) { r.Questions[0].Choices = []string{"a"} }},
		{"scale without bounds", func(r *dto.TestCreateDTO) { r.Questions[2].ScaleMax = nil }},
		{"inverted scale", func(r *dto.TestCreateDTO) { r.Questions[2].ScaleMin = intPtr(9) }},
		{"negative weight", func(r *dto.TestCreateDTO) { r.Questions[0].Weight = -1 }},
		{"zero time limit", func(r *dto.TestCreateDTO) { r.Config.TimeLimitMinutes = intPtr(0) }},
		{"no questions", func(r *dto.TestCreateDTO) { r.Questions = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTestRepo{tests: map[uint]*model.Test{}}
			req := validTestRequest()
			tt.mutate(&req)

			_, err := NewAdminTestService(repo, repo, newFakeApplicationRepo()).CreateTest(context.Background(), 7, req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, repo.tests)
		})
	}
}

func TestDeleteTestRefusedWhileApplicationsExist(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTestRepo{tests: map[uint]*model.Test{}}
	apps := newFakeApplicationRepo()
	svc := NewAdminTestService(repo, repo, apps)

	created, err := svc.CreateTest(ctx, 7, validTestRequest())
	require.NoError(t, err)
	apps.apps[1] = &model.Application{ID: 1, CompanyID: 7, TestID: created.ID, CandidateID: 1, Status: model.StatusCompleted}

	err = svc.DeleteTest(ctx, 7, created.ID)
	assert.ErrorIs(t, err, ErrInUse)
	assert.Contains(t, repo.tests, created.ID)

	got, err := svc.GetTest(ctx, 7, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Questions, 3)

	delete(apps.apps, 1)
	assert.NoError(t, svc.DeleteTest(ctx, 7, created.ID))
}

func TestUpdateTestReplacesQuestions(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTestRepo{tests: map[uint]*model.Test{}}
	apps := newFakeApplicationRepo()
	svc := NewAdminTestService(repo, repo, apps)

	created, err := svc.CreateTest(ctx, 7, validTestRequest())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, 7, created.ID, "draft"))

	// A pending application has not loaded any question yet.
	apps.apps[1] = &model.Application{ID: 1, CompanyID: 7, TestID: created.ID, CandidateID: 1, Status: model.StatusPending}

	req := validTestRequest()
	req.Title = "Perfil Comercial v2"
	req.Questions = req.Questions[:2]
	updated, err := svc.UpdateTest(ctx, 7, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Perfil Comercial v2", updated.Title)
	assert.Equal(t, "draft", updated.Status)
	require.Len(t, updated.Questions, 2)
	assert.Equal(t, created.ID, updated.Questions[0].TestID)

	req.Status = "active"
	updated, err = svc.UpdateTest(ctx, 7, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "active", updated.Status)

	_, err = svc.UpdateTest(ctx, 8, created.ID, req)
	assert.ErrorIs(t, err, ErrNotFound)

	req.Questions[1].DisplayOrder = 1
	_, err = svc.UpdateTest(ctx, 7, created.ID, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateTestRefusedOnceStarted(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTestRepo{tests: map[uint]*model.Test{}}
	apps := newFakeApplicationRepo()
	svc := NewAdminTestService(repo, repo, apps)

	created, err := svc.CreateTest(ctx, 7, validTestRequest())
	require.NoError(t, err)
	apps.apps[1] = &model.Application{ID: 1, CompanyID: 7, TestID: created.ID, CandidateID: 1, Status: model.StatusInProgress}

	req := validTestRequest()
	req.Title = "Outro"
	_, err = svc.UpdateTest(ctx, 7, created.ID, req)
	assert.ErrorIs(t, err, ErrInUse)
	assert.Equal(t, "Perfil Comercial", repo.tests[created.ID].Title)
	assert.Len(t, repo.tests[created.ID].Questions, 3)
}

func TestUpdateTestStatus(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTestRepo{tests: map[uint]*model.Test{}}
	svc := NewAdminTestService(repo, repo, newFakeApplicationRepo())

	created, err := svc.CreateTest(ctx, 7, validTestRequest())
	require.NoError(t, err)
	assert.Equal(t, "active", created.Status)

	require.NoError(t, svc.UpdateStatus(ctx, 7, created.ID, "inactive"))
	assert.Equal(t, model.TestInactive, repo.tests[created.ID].Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, 7, created.ID, "archived"), ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, 8, created.ID, "active"), ErrNotFound)

	list, err := svc.ListTests(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "inactive", list[0].Status)
}
