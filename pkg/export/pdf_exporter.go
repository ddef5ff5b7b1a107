package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const ptToMM = 25.4 / 72

// TableStyle controls how PDFExporter draws the table.
type TableStyle struct {
	FontFamily      string
	FontSize        float64 // points
	HeaderFill      [3]int
	HeaderText      [3]int
	BodyText        [3]int
	GridColor       [3]int
	GridWidth       float64 // points
	CellPadding     float64 // points, top and bottom
	CellPaddingX    float64 // points, left and right
	HeaderPadBottom float64 // points, replaces CellPadding below header text
}

// DefaultTableStyle is a grey header with white bold text, centred 8pt cells and a thin black grid.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		FontFamily:      "Helvetica",
		FontSize:        8,
		HeaderFill:      [3]int{128, 128, 128},
		HeaderText:      [3]int{245, 245, 245},
		BodyText:        [3]int{0, 0, 0},
		GridColor:       [3]int{0, 0, 0},
		GridWidth:       0.5,
		CellPadding:     3,
		CellPaddingX:    6,
		HeaderPadBottom: 12,
	}
}

// PDFExporter renders datasets into a styled tabular PDF.
type PDFExporter struct {
	style TableStyle
}

// NewPDFExporter constructs a PDF exporter with DefaultTableStyle.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{style: DefaultTableStyle()}
}

// NewPDFExporterWithStyle constructs a PDF exporter with a custom style.
func NewPDFExporterWithStyle(style TableStyle) *PDFExporter {
	return &PDFExporter{style: style}
}

// Render creates a PDF document with an optional title and one table. Cell values may contain
// newlines; the header row is repeated after page breaks.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation := "P"
	if len(data.Headers) > 6 {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(false, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont(e.style.FontFamily, "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colWidth := (pageW - left - right) / float64(len(data.Headers))

	pdf.SetLineWidth(e.style.GridWidth * ptToMM)
	pdf.SetDrawColor(e.style.GridColor[0], e.style.GridColor[1], e.style.GridColor[2])

	header := tableRow{cells: translate(tr, data.Headers), header: true}
	body := make([]tableRow, 0, len(data.Rows))
	for _, row := range data.Rows {
		values := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			values[i] = row[h]
		}
		body = append(body, tableRow{cells: translate(tr, values)})
	}

	e.drawRow(pdf, header, left, colWidth)
	for _, row := range body {
		height := e.rowHeight(pdf, row, colWidth)
		if pdf.GetY()+height > pageH-bottom {
			pdf.AddPage()
			e.drawRow(pdf, header, left, colWidth)
		}
		e.drawRow(pdf, row, left, colWidth)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type tableRow struct {
	cells  []string
	header bool
}

func (e *PDFExporter) applyFont(pdf *gofpdf.Fpdf, header bool) {
	style, text := "", e.style.BodyText
	if header {
		style, text = "B", e.style.HeaderText
	}
	pdf.SetFont(e.style.FontFamily, style, e.style.FontSize)
	pdf.SetTextColor(text[0], text[1], text[2])
}

func (e *PDFExporter) lineHeight() float64 {
	return e.style.FontSize * 1.2 * ptToMM
}

func (e *PDFExporter) wrap(pdf *gofpdf.Fpdf, text string, width float64) []string {
	inner := width - 2*e.style.CellPaddingX*ptToMM
	var lines []string
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			lines = append(lines, "")
			continue
		}
		for _, line := range pdf.SplitLines([]byte(part), inner) {
			lines = append(lines, string(line))
		}
	}
	return lines
}

func (e *PDFExporter) rowHeight(pdf *gofpdf.Fpdf, row tableRow, colWidth float64) float64 {
	e.applyFont(pdf, row.header)
	maxLines := 1
	for _, cell := range row.cells {
		if n := len(e.wrap(pdf, cell, colWidth)); n > maxLines {
			maxLines = n
		}
	}
	padBottom := e.style.CellPadding
	if row.header {
		padBottom = e.style.HeaderPadBottom
	}
	return float64(maxLines)*e.lineHeight() + (e.style.CellPadding+padBottom)*ptToMM
}

func (e *PDFExporter) drawRow(pdf *gofpdf.Fpdf, row tableRow, left, colWidth float64) {
	height := e.rowHeight(pdf, row, colWidth)
	e.applyFont(pdf, row.header)
	y := pdf.GetY()
	lh := e.lineHeight()

	padBottom := e.style.CellPadding
	if row.header {
		padBottom = e.style.HeaderPadBottom
	}
	textArea := height - (e.style.CellPadding+padBottom)*ptToMM

	for i, cell := range row.cells {
		x := left + float64(i)*colWidth
		if row.header {
			fill := e.style.HeaderFill
			pdf.SetFillColor(fill[0], fill[1], fill[2])
			pdf.Rect(x, y, colWidth, height, "FD")
		} else {
			pdf.Rect(x, y, colWidth, height, "D")
		}

		lines := e.wrap(pdf, cell, colWidth)
		offset := (textArea - float64(len(lines))*lh) / 2
		ty := y + e.style.CellPadding*ptToMM + math.Max(0, offset)
		for _, line := range lines {
			pdf.SetXY(x, ty)
			pdf.CellFormat(colWidth, lh, line, "", 0, "C", false, 0, "")
			ty += lh
		}
	}
	pdf.SetXY(left, y+height)
}

func translate(tr func(string) string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = tr(v)
	}
	return out
}
