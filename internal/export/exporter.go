// Package export renders spending-trend reports as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"finwise/internal/report"

	"github.com/jung-kurt/gofpdf"
)

// WriteCSV streams the trend points as CSV: one row per bucket, totals with
// two decimals.
func WriteCSV(w io.Writer, points []report.TrendPoint, currency string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Period", fmt.Sprintf("Total (%s)", currency), "Transactions"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range points {
		record := []string{
			p.Group,
			p.Total.StringFixed(2),
			fmt.Sprintf("%d", p.Count),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WritePDF renders the trend points as a single-page A4 table.
func WritePDF(w io.Writer, points []report.TrendPoint, currency string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Spending Trend"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(50, 50, 50)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Amounts in %s", currency)), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetDrawColor(200, 200, 200)
	pdf.CellFormat(60, 7, "Period", "B", 0, "L", false, 0, "")
	pdf.CellFormat(70, 7, "Total", "B", 0, "R", false, 0, "")
	pdf.CellFormat(60, 7, "Transactions", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, p := range points {
		pdf.CellFormat(60, 6, tr(p.Group), "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, tr(p.Total.StringFixed(2)), "", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%d", p.Count), "", 1, "R", false, 0, "")
	}
	if len(points) == 0 {
		pdf.CellFormat(190, 6, "No transactions in the selected range", "", 1, "L", false, 0, "")
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footer := fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footer), "", 0, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
