// Package report renders the operator-facing daily dispatch summary PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/dispatch-console/backend/internal/dispatch"
	"github.com/dispatch-console/backend/internal/model"
)

// DailyData is everything the daily summary renders: the city, the report
// date, the booking tally and the per-liner progress rows.
type DailyData struct {
	City     string
	Date     time.Time
	Tally    dispatch.Tally
	Progress []model.LinerProgress
}

// Service builds report PDFs from the current dispatch snapshots.
type Service struct {
	sync *dispatch.Synchronizer
}

// NewService creates a report service over the given synchronizer.
func NewService(sync *dispatch.Synchronizer) *Service {
	return &Service{sync: sync}
}

// GenerateDaily renders today's dispatch summary for the active city.
func (s *Service) GenerateDaily() ([]byte, string, error) {
	data := DailyData{
		City:     s.sync.City(),
		Date:     time.Now(),
		Tally:    s.sync.Tally(dispatch.Filter{}),
		Progress: s.sync.Progress(),
	}
	return buildDailyPDF(data)
}

func buildDailyPDF(d DailyData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Daily Dispatch Summary", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "DAILY DISPATCH SUMMARY")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("City        : %s", safe(d.City, "-")),
		fmt.Sprintf("Date        : %s", d.Date.Format("2006-01-02")),
		fmt.Sprintf("Generated   : %s", time.Now().Format("2006-01-02 15:04")),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Bookings")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	tally := []string{
		fmt.Sprintf("Total       : %d", d.Tally.Total),
		fmt.Sprintf("Completed   : %d", d.Tally.Completed),
		fmt.Sprintf("Cancelled   : %d", d.Tally.Cancelled),
		fmt.Sprintf("Pending     : %d", d.Tally.Pending),
	}
	for _, line := range tally {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Liner Progress")
	pdf.Ln(8)

	// Table header
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(55, 7, "Liner", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Done", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 7, "Pending", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 7, "Cancelled", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Trade Value", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Commission", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(d.Progress) == 0 {
		pdf.CellFormat(185, 7, "No liners on roster", "1", 1, "C", false, 0, "")
	}
	for _, p := range d.Progress {
		name := p.FullName
		if name == "" {
			name = p.LinerID
		}
		if p.BusinessName != "" {
			name = fmt.Sprintf("%s (%s)", name, p.BusinessName)
		}
		pdf.CellFormat(55, 7, truncate(name, 34), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Completed), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Pending), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", p.Cancelled), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatAmount(p.TradeValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatAmount(p.Commission), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Figures cover today's synchronized bookings only. Trade value and commission sum over completed bookings.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("DISPATCH_%s_%s.pdf", safeFilenamePart(d.City), d.Date.Format("20060102"))
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return replacer.Replace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
