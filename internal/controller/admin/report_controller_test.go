package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traitview/traitview/internal/auth"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
)

type stubReportService struct {
	companyID uint
	query     dto.ReportQuery
	format    string
}

func (s *stubReportService) Build(ctx context.Context, companyID uint, query dto.ReportQuery) (*dto.ReportDataDTO, error) {
	s.companyID, s.query = companyID, query
	return &dto.ReportDataDTO{TotalApplications: 4}, nil
}

func (s *stubReportService) Export(ctx context.Context, companyID uint, query dto.ReportQuery, format string) (*service.ExportFile, error) {
	s.companyID, s.query, s.format = companyID, query, format
	if format != service.FormatCSV {
		return nil, service.ErrUnsupportedFormat
	}
	return &service.ExportFile{
		Filename:    "relatorio-2024-03-01.csv",
		ContentType: "text/csv; charset=utf-8",
		Body:        []byte("RESUMO GERAL\n"),
	}, nil
}

type stubNotifications struct{}

func (stubNotifications) NotifyCompletion(ctx context.Context, notice service.CompletionNotice) error {
	return nil
}

func (stubNotifications) List(ctx context.Context, companyID uint) ([]dto.NotificationResponseDTO, error) {
	return []dto.NotificationResponseDTO{{ID: 1, ApplicationID: 5, Score: 80}}, nil
}

func newReportRouter(reports service.ReportService, withSession bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/admin")
	if withSession {
		group.Use(func(ctx *gin.Context) {
			auth.Initialize(ctx, auth.Session{UserID: 1, TenantID: 42, Role: auth.RoleCompanyUser})
			ctx.Next()
		})
	}
	NewReportController(reports, stubNotifications{}).RegisterRoutes(group)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReportIsScopedToCallerTenant(t *testing.T) {
	reports := &stubReportService{}
	rec := get(newReportRouter(reports, true), "/admin/reports?start_date=2024-01-01&status=completed&test_id=3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), reports.companyID)
	assert.Equal(t, dto.ReportQuery{StartDate: "2024-01-01", Status: "completed", TestID: 3}, reports.query)
}

func TestReportRejectsMalformedFilters(t *testing.T) {
	rec := get(newReportRouter(&stubReportService{}, true), "/admin/reports?start_date=01/02/2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(newReportRouter(&stubReportService{}, true), "/admin/reports?status=archived")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportSetsAttachmentHeaders(t *testing.T) {
	rec := get(newReportRouter(&stubReportService{}, true), "/admin/reports/export?format=csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="relatorio-2024-03-01.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "RESUMO GERAL\n", rec.Body.String())
}

func TestExportUnknownFormat(t *testing.T) {
	rec := get(newReportRouter(&stubReportService{}, true), "/admin/reports/export?format=xlsx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsList(t *testing.T) {
	rec := get(newReportRouter(&stubReportService{}, true), "/admin/notifications")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"application_id":5`)
}

func TestReportWithoutSessionIsUnauthorized(t *testing.T) {
	rec := get(newReportRouter(&stubReportService{}, false), "/admin/reports")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
