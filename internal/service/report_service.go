package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/repository"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var statusLabels = []struct {
	status model.ApplicationStatus
	label  string
}{
	{model.StatusPending, "Pendente"},
	{model.StatusInProgress, "Em Andamento"},
	{model.StatusCompleted, "Finalizado"},
}

// PDFRenderer renders aggregated report data as a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, data dto.ReportDataDTO, generatedAt time.Time) ([]byte, error)
}

// ExportFile is a rendered report ready to be served as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ReportService interface {
	Build(ctx context.Context, companyID uint, query dto.ReportQuery) (*dto.ReportDataDTO, error)
	Export(ctx context.Context, companyID uint, query dto.ReportQuery, format string) (*ExportFile, error)
}

type reportService struct {
	appRepo repository.ApplicationRepository
	pdf     PDFRenderer
	clock   clockwork.Clock
}

func NewReportService(appRepo repository.ApplicationRepository, pdf PDFRenderer, clock clockwork.Clock) ReportService {
	return &reportService{appRepo: appRepo, pdf: pdf, clock: clock}
}

func (s *reportService) Build(ctx context.Context, companyID uint, query dto.ReportQuery) (*dto.ReportDataDTO, error) {
	filter, err := reportFilter(companyID, query)
	if err != nil {
		return nil, err
	}
	apps, err := s.appRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to load applications for report")
		return nil, fmt.Errorf("error fetching applications: %w", err)
	}
	data := aggregate(apps)
	return &data, nil
}

func (s *reportService) Export(ctx context.Context, companyID uint, query dto.ReportQuery, format string) (*ExportFile, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	data, err := s.Build(ctx, companyID, query)
	if err != nil {
		return nil, err
	}

	if format == FormatCSV {
		body, err := writeCSV(data)
		if err != nil {
			return nil, fmt.Errorf("error writing csv: %w", err)
		}
		return &ExportFile{Filename: "relatorio.csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	}

	body, err := s.pdf.Render(ctx, *data, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Uint("companyID", companyID).Msg("Failed to render report PDF")
		return nil, fmt.Errorf("error rendering pdf: %w", err)
	}
	return &ExportFile{Filename: "relatorio.pdf", ContentType: "application/pdf", Body: body}, nil
}

func reportFilter(companyID uint, query dto.ReportQuery) (repository.ApplicationFilter, error) {
	filter := repository.ApplicationFilter{
		CompanyID: companyID,
		Status:    model.ApplicationStatus(query.Status),
		TestID:    query.TestID,
	}
	if query.StartDate != "" {
		from, err := time.Parse(time.DateOnly, query.StartDate)
		if err != nil {
			return filter, fmt.Errorf("%w: start_date: %v", ErrInvalidInput, err)
		}
		filter.From = &from
	}
	if query.EndDate != "" {
		end, err := time.Parse(time.DateOnly, query.EndDate)
		if err != nil {
			return filter, fmt.Errorf("%w: end_date: %v", ErrInvalidInput, err)
		}
		// Inclusive of the whole end day.
		to := end.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return filter, nil
}

func aggregate(apps []model.Application) dto.ReportDataDTO {
	tests := make(map[uint]struct{})
	candidates := make(map[uint]struct{})
	statusCounts := make(map[model.ApplicationStatus]int)

	type monthSets struct {
		tests      map[uint]struct{}
		candidates map[uint]struct{}
	}
	months := make(map[string]*monthSets)

	type scoreSum struct {
		title string
		count int
		total int
	}
	scores := make(map[uint]*scoreSum)

	for _, app := range apps {
		tests[app.TestID] = struct{}{}
		candidates[app.CandidateID] = struct{}{}
		statusCounts[app.Status]++

		key := app.CreatedAt.UTC().Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &monthSets{tests: make(map[uint]struct{}), candidates: make(map[uint]struct{})}
			months[key] = m
		}
		m.tests[app.TestID] = struct{}{}
		m.candidates[app.CandidateID] = struct{}{}

		if r := app.Results.Data(); app.Status == model.StatusCompleted && r != nil {
			sum, ok := scores[app.TestID]
			if !ok {
				sum = &scoreSum{title: app.Test.Title}
				scores[app.TestID] = sum
			}
			sum.count++
			sum.total += r.Score
		}
	}

	data := dto.ReportDataDTO{
		TotalTests:         len(tests),
		TotalCandidates:    len(candidates),
		TotalApplications:  len(apps),
		CompletionRate:     percent(statusCounts[model.StatusCompleted], len(apps)),
		StatusDistribution: []dto.StatusCountDTO{},
		MonthlyEvolution:   []dto.MonthlyEvolutionDTO{},
		TestScores:         []dto.TestScoreDTO{},
	}

	for _, sl := range statusLabels {
		count := statusCounts[sl.status]
		if count == 0 {
			continue
		}
		data.StatusDistribution = append(data.StatusDistribution, dto.StatusCountDTO{
			Status:     sl.label,
			Count:      count,
			Percentage: round1(float64(count) * 100 / float64(len(apps))),
		})
	}

	for _, key := range slices.Sorted(maps.Keys(months)) {
		data.MonthlyEvolution = append(data.MonthlyEvolution, dto.MonthlyEvolutionDTO{
			Month:      key,
			Tests:      len(months[key].tests),
			Candidates: len(months[key].candidates),
		})
	}

	for _, testID := range slices.Sorted(maps.Keys(scores)) {
		sum := scores[testID]
		data.TestScores = append(data.TestScores, dto.TestScoreDTO{
			TestID:       testID,
			TestTitle:    sum.title,
			Completed:    sum.count,
			AverageScore: round1(float64(sum.total) / float64(sum.count)),
		})
	}
	return data
}

func writeCSV(data *dto.ReportDataDTO) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Relatório de Testes - TraitView"},
		{},
		{"RESUMO GERAL"},
		{"Total de Testes", strconv.Itoa(data.TotalTests)},
		{"Total de Candidatos", strconv.Itoa(data.TotalCandidates)},
		{"Total de Aplicações", strconv.Itoa(data.TotalApplications)},
		{"Taxa de Conclusão", strconv.Itoa(data.CompletionRate) + "%"},
		{},
		{"DISTRIBUIÇÃO POR STATUS"},
		{"Status", "Quantidade", "Porcentagem"},
	}
	for _, item := range data.StatusDistribution {
		rows = append(rows, []string{item.Status, strconv.Itoa(item.Count), strconv.FormatFloat(item.Percentage, 'f', 1, 64) + "%"})
	}
	rows = append(rows, []string{}, []string{"EVOLUÇÃO MENSAL"}, []string{"Mês", "Testes", "Candidatos"})
	for _, item := range data.MonthlyEvolution {
		rows = append(rows, []string{item.Month, strconv.Itoa(item.Tests), strconv.Itoa(item.Candidates)})
	}
	rows = append(rows, []string{}, []string{"PONTUAÇÃO MÉDIA POR TESTE"}, []string{"Teste", "Concluídos", "Pontuação Média"})
	for _, item := range data.TestScores {
		rows = append(rows, []string{item.TestTitle, strconv.Itoa(item.Completed), strconv.FormatFloat(item.AverageScore, 'f', 1, 64)})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
