package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
)

type CandidateService interface {
	Create(ctx context.Context, companyID uint, req dto.CandidateCreateDTO) (*dto.CandidateResponseDTO, error)
	List(ctx context.Context, companyID uint) ([]dto.CandidateResponseDTO, error)
	Update(ctx context.Context, companyID, id uint, req dto.CandidateCreateDTO) (*dto.CandidateResponseDTO, error)
	UpdateStatus(ctx context.Context, companyID, id uint, status string) error
	// Delete refuses candidates that have received a test.
	Delete(ctx context.Context, companyID, id uint) error
}

type candidateService struct {
	repo    repository.CandidateRepository
	appRepo repository.ApplicationRepository
}

func NewCandidateService(repo repository.CandidateRepository, appRepo repository.ApplicationRepository) CandidateService {
	return &candidateService{repo: repo, appRepo: appRepo}
}

func (s *candidateService) Create(ctx context.Context, companyID uint, req dto.CandidateCreateDTO) (*dto.CandidateResponseDTO, error) {
	var candidate model.Candidate
	copier.Copy(&candidate, &req)
	candidate.CompanyID = companyID
	candidate.Email = normalizeEmail(req.Email)
	candidate.Status = model.CandidateActive

	if err := s.repo.Create(ctx, &candidate); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: candidate %s", ErrDuplicate, candidate.Email)
		}
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to create candidate")
		return nil, fmt.Errorf("error creating candidate: %w", err)
	}

	var resp dto.CandidateResponseDTO
	copier.Copy(&resp, &candidate)
	return &resp, nil
}

func (s *candidateService) List(ctx context.Context, companyID uint) ([]dto.CandidateResponseDTO, error) {
	candidates, err := s.repo.List(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to list candidates")
		return nil, fmt.Errorf("error fetching candidates: %w", err)
	}
	resp := make([]dto.CandidateResponseDTO, 0, len(candidates))
	if err := copier.Copy(&resp, &candidates); err != nil {
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	return resp, nil
}

func (s *candidateService) Update(ctx context.Context, companyID, id uint, req dto.CandidateCreateDTO) (*dto.CandidateResponseDTO, error) {
	candidate, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, notFoundOr(err, "error fetching candidate")
	}
	candidate.Name = req.Name
	candidate.Email = normalizeEmail(req.Email)
	candidate.Phone = req.Phone
	candidate.Position = req.Position

	if err := s.repo.Update(ctx, candidate); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: candidate %s", ErrDuplicate, candidate.Email)
		}
		return nil, notFoundOr(err, "error updating candidate")
	}
	log.Info().Uint("candidateID", id).Msg("Candidate updated")

	var resp dto.CandidateResponseDTO
	copier.Copy(&resp, candidate)
	return &resp, nil
}

func (s *candidateService) UpdateStatus(ctx context.Context, companyID, id uint, status string) error {
	next := model.CandidateStatus(status)
	if !slices.Contains([]model.CandidateStatus{model.CandidateActive, model.CandidateInReview, model.CandidateConcluded}, next) {
		return fmt.Errorf("%w: unknown candidate status %q", ErrInvalidInput, status)
	}
	if err := s.repo.UpdateStatus(ctx, companyID, id, next); err != nil {
		return notFoundOr(err, "error updating candidate status")
	}
	log.Info().Uint("candidateID", id).Str("status", status).Msg("Candidate status updated")
	return nil
}

func (s *candidateService) Delete(ctx context.Context, companyID, id uint) error {
	if _, err := s.repo.FindByID(ctx, companyID, id); err != nil {
		return notFoundOr(err, "error fetching candidate")
	}
	sent, err := s.appRepo.CountByCandidate(ctx, id)
	if err != nil {
		log.Error().Err(err).Uint("candidateID", id).Msg("Failed to count candidate applications")
		return fmt.Errorf("error counting candidate applications: %w", err)
	}
	if sent > 0 {
		return fmt.Errorf("%w: candidate %d has %d applications", ErrInUse, id, sent)
	}
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return notFoundOr(err, "error deleting candidate")
	}
	log.Info().Uint("candidateID", id).Msg("Candidate deleted")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
