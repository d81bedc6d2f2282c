package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskflow/internal/models"
)

// Generator renders reports; an interface so handlers can be tested without gofpdf.
type Generator interface {
	StatisticsReport(data StatisticsData) ([]byte, error)
}

// ReportGenerator is the gofpdf implementation.
type ReportGenerator struct {
	FontPath string // optional TTF for UTF-8 titles; core Helvetica when empty
	fontName string
}

type StatisticsData struct {
	Title       string
	Stats       models.Statistics
	GeneratedAt time.Time
	GeneratedBy string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	return &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
}

func (g *ReportGenerator) StatisticsReport(data StatisticsData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "Task statistics overview"
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(data.Title, true)
	pdf.SetAuthor("taskflow", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	pdf.AddPage()

	// header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	sub := "Generated " + data.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")
	if data.GeneratedBy != "" {
		sub += " by " + data.GeneratedBy
	}
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	s := data.Stats
	g.sectionTitle(pdf, "By status")
	g.kvLine(pdf, "Total", s.Total)
	g.kvLine(pdf, "Pending", s.Pending)
	g.kvLine(pdf, "In progress", s.InProgress)
	g.kvLine(pdf, "Completed", s.Completed)
	g.kvLine(pdf, "Cancelled", s.Cancelled)
	g.hr(pdf)

	g.sectionTitle(pdf, "By priority")
	g.kvLine(pdf, "Low", s.ByPriority.Low)
	g.kvLine(pdf, "Medium", s.ByPriority.Medium)
	g.kvLine(pdf, "High", s.ByPriority.High)
	g.kvLine(pdf, "Urgent", s.ByPriority.Urgent)
	g.hr(pdf)

	g.sectionTitle(pdf, "Deadlines")
	g.kvLine(pdf, "Overdue", s.Overdue)
	pdf.SetFont(g.fontName, "", 9)
	pdf.MultiCell(0, 5, "Overdue counts every task whose due date has passed and whose status is not completed, cancelled tasks included.", "", "L", false)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statistics pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== helpers =====

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font("Report", "", g.FontPath)
	pdf.AddUTF8Font("Report", "B", g.FontPath)
	g.fontName = "Report"
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key string, val int) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d", val), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
