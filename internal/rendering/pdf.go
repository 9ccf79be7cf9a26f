package rendering

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/interview-coach/internal/types"
)

const (
	pageMargin  = 18.0
	lineHeight  = 6.0
	labelWidth  = 38.0
	valueWidth  = 12.0
	barHeight   = 6.0
	utf8Family  = "report-utf8"
	coreFamily  = "Helvetica"
	reportTitle = "Mock Interview Report"
)

// Renderer draws reports with either the built-in Helvetica font or a
// TrueType font loaded from disk. A TrueType font is needed for text outside
// Windows-1252, such as Korean.
type Renderer struct {
	fontPath string
	now      func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithUTF8Font renders all text with the TrueType font at path.
func WithUTF8Font(path string) Option {
	return func(r *Renderer) { r.fontPath = path }
}

// WithClock sets the time printed in the report header.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderReportPDF writes report and transcript as a PDF using the built-in font.
func RenderReportPDF(w io.Writer, report *types.InterviewReport, transcript types.Transcript) error {
	return NewRenderer().Render(w, report, transcript)
}

// Render writes report and transcript to w as a PDF document.
func (r *Renderer) Render(w io.Writer, report *types.InterviewReport, transcript types.Transcript) error {
	if report == nil {
		return &InputError{Message: "report is required"}
	}
	if !report.ChartConsistent() {
		return &InputError{Message: fmt.Sprintf("chart has %d labels but %d values",
			len(report.ChartData.Labels), len(report.ChartData.Values))}
	}
	for i, v := range report.ChartData.Values {
		if v < 0 {
			return &InputError{Message: fmt.Sprintf("chart value %d is negative", i)}
		}
	}

	doc := r.newDocument()
	doc.header(r.now())
	doc.section("Overall Feedback")
	doc.paragraph(report.OverallFeedback)
	doc.section("Strengths")
	doc.bullets(report.Strengths)
	doc.section("Areas to Improve")
	doc.bullets(report.Weaknesses)
	doc.section("Questions by Category")
	doc.chart(report.ChartData)
	if len(transcript) > 0 {
		doc.pdf.AddPage()
		doc.section("Interview Transcript")
		doc.transcript(transcript)
	}

	if err := doc.pdf.Error(); err != nil {
		return &RenderError{Message: "failed to lay out document", Cause: err}
	}
	if err := doc.pdf.Output(w); err != nil {
		return &RenderError{Message: "failed to write PDF", Cause: err}
	}
	return nil
}

// document wraps fpdf with the font and text encoding chosen for this render.
type document struct {
	pdf    *fpdf.Fpdf
	family string
	text   func(string) string
}

func (r *Renderer) newDocument() *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(reportTitle, true)
	pdf.SetCreator("interview-coach", true)
	pdf.SetCreationDate(r.now())
	pdf.SetModificationDate(r.now())

	d := &document{pdf: pdf, family: coreFamily, text: toWinAnsi}
	if r.fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", r.fontPath)
		pdf.AddUTF8Font(utf8Family, "B", r.fontPath)
		d.family = utf8Family
		d.text = func(s string) string { return s }
	}
	pdf.AddPage()
	return d
}

func (d *document) font(style string, size float64) {
	d.pdf.SetFont(d.family, style, size)
}

func (d *document) contentWidth() float64 {
	pageW, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return pageW - left - right
}

func (d *document) header(at time.Time) {
	d.font("B", 20)
	d.pdf.CellFormat(0, 10, d.text(reportTitle), "", 1, "L", false, 0, "")
	d.font("", 9)
	d.pdf.SetTextColor(110, 110, 110)
	d.pdf.CellFormat(0, 5, d.text("Generated "+at.Format("January 2, 2006 15:04")), "", 1, "L", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Ln(4)
}

func (d *document) section(title string) {
	d.pdf.Ln(3)
	d.font("B", 13)
	d.pdf.CellFormat(0, 8, d.text(title), "B", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *document) paragraph(body string) {
	d.font("", 11)
	if strings.TrimSpace(body) == "" {
		body = "-"
	}
	d.pdf.MultiCell(0, lineHeight, d.text(body), "", "L", false)
}

func (d *document) bullets(items []string) {
	d.font("", 11)
	if len(items) == 0 {
		d.pdf.MultiCell(0, lineHeight, d.text("None recorded."), "", "L", false)
		return
	}
	left, _, _, _ := d.pdf.GetMargins()
	for _, item := range items {
		d.pdf.SetX(left)
		d.pdf.CellFormat(6, lineHeight, d.text("-"), "", 0, "L", false, 0, "")
		d.pdf.MultiCell(0, lineHeight, d.text(item), "", "L", false)
	}
}

func (d *document) chart(data types.ChartData) {
	d.font("", 11)
	if len(data.Labels) == 0 {
		d.pdf.MultiCell(0, lineHeight, d.text("No questions recorded."), "", "L", false)
		return
	}

	maxValue := 0
	for _, v := range data.Values {
		maxValue = max(maxValue, v)
	}
	barSpace := d.contentWidth() - labelWidth - valueWidth

	for i, label := range data.Labels {
		value := data.Values[i]
		d.pdf.CellFormat(labelWidth, barHeight+2, d.text(label), "", 0, "L", false, 0, "")

		x, y := d.pdf.GetX(), d.pdf.GetY()
		width := 0.0
		if maxValue > 0 {
			width = barSpace * float64(value) / float64(maxValue)
		}
		d.pdf.SetFillColor(230, 230, 230)
		d.pdf.Rect(x, y+1, barSpace, barHeight, "F")
		if width > 0 {
			d.pdf.SetFillColor(66, 103, 178)
			d.pdf.Rect(x, y+1, width, barHeight, "F")
		}
		d.pdf.SetX(x + barSpace)
		d.pdf.CellFormat(valueWidth, barHeight+2, fmt.Sprintf("%d", value), "", 1, "R", false, 0, "")
	}

	total := 0
	for _, v := range data.Values {
		total += v
	}
	d.pdf.Ln(1)
	d.font("", 9)
	d.pdf.CellFormat(0, 5, d.text(fmt.Sprintf("Total questions: %d", total)), "", 1, "L", false, 0, "")
}

func (d *document) transcript(t types.Transcript) {
	for _, msg := range t {
		d.font("B", 10)
		d.pdf.CellFormat(0, lineHeight, d.text(roleLabel(msg.Role)), "", 1, "L", false, 0, "")
		d.font("", 10)
		d.pdf.MultiCell(0, 5, d.text(msg.Content), "", "L", false)
		d.pdf.Ln(2)
	}
}

func roleLabel(role types.Role) string {
	switch role {
	case types.RoleAssistant:
		return "Interviewer"
	case types.RoleUser:
		return "Candidate"
	case types.RoleSystem:
		return "System"
	case types.RoleTool:
		return "Tool"
	}
	return string(role)
}
