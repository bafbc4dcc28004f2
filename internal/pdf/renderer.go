package pdf

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/dto"
)

//go:embed report.html.tmpl
var reportTemplate string

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

type reportPage struct {
	Data        dto.ReportDataDTO
	GeneratedAt time.Time
}

// Renderer turns report data into a PDF through headless Chromium.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderHTML executes the report template. It is split out so the markup
// can be checked without a browser.
func (r *Renderer) RenderHTML(data dto.ReportDataDTO, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, reportPage{Data: data, GeneratedAt: generatedAt}); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) Render(ctx context.Context, data dto.ReportDataDTO, generatedAt time.Time) ([]byte, error) {
	htmlContent, err := r.RenderHTML(data, generatedAt)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(htmlContent, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("1cm"),
			Bottom: playwright.String("1cm"),
			Left:   playwright.String("1cm"),
			Right:  playwright.String("1cm"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}

	log.Debug().Int("bytes", len(pdfBytes)).Msg("Report PDF rendered")
	return pdfBytes, nil
}
