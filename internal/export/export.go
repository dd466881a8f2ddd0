// Package export renders check records as CSV and PDF downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/status"
)

// Header is the column row shared by both formats.
var Header = []string{
	"Date", "Group", "Checked By", "Location", "Item",
	"Minimum", "Quantity", "Status", "Note", "Timestamp",
}

// utf8BOM makes spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Filename returns the download name for a date, or for all dates when
// date is empty.
func Filename(date, ext string) string {
	if date == "" {
		date = "all"
	}
	return fmt.Sprintf("stock_check_%s.%s", date, ext)
}

func record(r model.CheckRow) []string {
	return []string{
		r.CheckDate, r.GroupName, r.CheckedBy, r.StockPlace, r.ItemName,
		r.Minimum, r.Quantity, string(r.Status), r.Note, r.CreatedAt,
	}
}

// WriteCSV writes a BOM, the header and one line per row.
func WriteCSV(w io.Writer, rows []model.CheckRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Column widths in mm; they sum to the printable width of landscape A4
// with 10mm margins.
var columnWidths = []float64{22, 30, 25, 30, 50, 25, 18, 15, 32, 30}

const (
	margin    = 10.0
	rowHeight = 6.0
)

// PDF renders rows as a landscape A4 table. Text outside cp1252 cannot be
// drawn by the core fonts and is replaced.
func PDF(rows []model.CheckRow, title, generated string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
		for i, h := range Header {
			ln := 0
			if i == len(Header)-1 {
				ln = 1
			}
			pdf.CellFormat(columnWidths[i], 7, h, "1", ln, "C", true, 0, "")
		}
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Generated: "+generated), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	header()

	for _, r := range rows {
		if pdf.GetY()+rowHeight > pageHeight-margin {
			pdf.AddPage()
			header()
		}

		fillStatus(pdf, r)
		cells := record(r)
		for i, c := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			align := "L"
			if i == 6 || i == 7 {
				align = "C"
			}
			fill := i == 7
			pdf.CellFormat(columnWidths[i], rowHeight, tr(fit(pdf, c, columnWidths[i])), "1", ln, align, fill, 0, "")
		}
	}

	if len(rows) == 0 {
		pdf.Ln(4)
		pdf.CellFormat(0, 8, "No stock checks recorded.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// fillStatus colours the status cell.
func fillStatus(pdf *gofpdf.Fpdf, r model.CheckRow) {
	switch r.Status {
	case status.Low:
		pdf.SetFillColor(255, 235, 160)
	case status.Empty:
		pdf.SetFillColor(255, 200, 200)
	case status.OK:
		pdf.SetFillColor(200, 255, 200)
	default:
		pdf.SetFillColor(235, 235, 235)
	}
}

// fit shortens s with an ellipsis until it fits width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
