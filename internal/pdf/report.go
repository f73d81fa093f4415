package pdf

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/services"
)

// ReportData is everything the pipeline report renders.
type ReportData struct {
	GeneratedAt time.Time
	Pipeline    services.PipelineMetrics
	Summary     services.SalesSummary
	Stages      services.StageDurationAnalytics
}

// ReportGenerator renders pipeline snapshots as PDF.
type ReportGenerator struct {
	fontName string
}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{fontName: "Helvetica"}
}

// PipelineReport writes a one-page pipeline summary to w.
func (g *ReportGenerator) PipelineReport(w io.Writer, data ReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Pipeline Report", false)
	pdf.SetAuthor("PipelineFlow", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "PIPELINE REPORT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, data.GeneratedAt.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 13)
	pdf.CellFormat(0, 8, "Pipeline", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	g.row(pdf, "Total deals", fmt.Sprintf("%d", data.Pipeline.TotalDeals))
	g.row(pdf, "Total value", fmt.Sprintf("%.2f", data.Pipeline.TotalValue))
	g.row(pdf, "Weighted value", fmt.Sprintf("%.2f", data.Pipeline.WeightedValue))

	stages := make([]string, 0, len(data.Pipeline.StageDistribution))
	for stage := range data.Pipeline.StageDistribution {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		g.row(pdf, "  "+stage, fmt.Sprintf("%d", data.Pipeline.StageDistribution[stage]))
	}
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Sales summary (%s)", data.Summary.Period), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	g.row(pdf, "Won / lost / active", fmt.Sprintf("%d / %d / %d",
		data.Summary.WonDeals, data.Summary.LostDeals, data.Summary.ActiveDeals))
	g.row(pdf, "Total revenue", fmt.Sprintf("%.2f", data.Summary.TotalRevenue))
	g.row(pdf, "Win rate", fmt.Sprintf("%.1f%%", data.Summary.WinRate))
	g.row(pdf, "Conversion rate", fmt.Sprintf("%.1f%%", data.Summary.ConversionRate))
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 13)
	pdf.CellFormat(0, 8, "Average time in stage", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)

	histStages := make([]string, 0, len(data.Stages.Historical))
	for stage := range data.Stages.Historical {
		histStages = append(histStages, stage)
	}
	sort.Strings(histStages)
	if len(histStages) == 0 {
		g.row(pdf, "No completed transitions yet", "")
	}
	for _, stage := range histStages {
		m := data.Stages.Historical[stage]
		avg := time.Duration(m.AverageDurationMs) * time.Millisecond
		g.row(pdf, stage, fmt.Sprintf("%s over %d transitions", formatDuration(avg), m.CompletedTransitions))
	}

	return pdf.Output(w)
}

func (g *ReportGenerator) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(90, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "R", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	pdf.Ln(2)
	x, y := pdf.GetX(), pdf.GetY()
	pageW, _ := pdf.GetPageSize()
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(x, y, pageW-20, y)
	pdf.Ln(4)
}

func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour {
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
	if d >= time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%.0fm", d.Minutes())
}
