package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

// Context describes who the report was generated for.
type Context struct {
	ChildName        string
	AgeGroup         analysis.AgeGroup
	HealthConditions []string
	GeneratedAt      time.Time
}

const (
	margin     = 15.0
	lineHeight = 5.0
	contentW   = 180.0
)

var (
	colorPrimary = [3]int{76, 70, 229}
	colorText    = [3]int{31, 41, 55}
	colorMuted   = [3]int{107, 114, 128}
	colorBody    = [3]int{55, 65, 81}
)

const disclaimer = "Disclaimer: This analysis is for informational purposes only and is not a substitute for " +
	"professional medical advice. Always consult with your pediatrician before making changes to your child's diet."

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// FileName is the download name for a result's report.
func FileName(res analysis.Result) string {
	name := unsafeFileChars.ReplaceAllString(res.ProductName, "_")
	if name == "" {
		name = "Product"
	}
	return name + "_Analysis.pdf"
}

// Render draws the analysis as an A4 PDF. It never touches the network.
func Render(res analysis.Result, rc Context) ([]byte, error) {
	if rc.GeneratedAt.IsZero() {
		rc.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	w := &writer{pdf: pdf, tr: tr}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		w.font("", 8, colorMuted)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	w.font("B", 20, colorPrimary)
	w.line(10, "Product Analysis Report")

	w.font("B", 14, colorText)
	w.line(8, "Product: "+res.ProductName)
	w.font("", 12, colorMuted)
	w.line(7, "Category: "+res.ProductCategory)

	w.font("", 11, colorText)
	w.line(6, "Analysis for: "+subject(rc))
	w.line(6, "Date: "+rc.GeneratedAt.Format("January 2, 2006"))
	pdf.Ln(3)

	w.font("B", 14, colorText)
	pdf.CellFormat(50, 8, tr("Suitability Rating:"), "", 0, "L", false, 0, "")
	w.font("B", 12, suitabilityColor(res.Suitability))
	w.line(8, fmt.Sprintf("%s (%d%%)", res.Suitability, res.SuitabilityRating))

	w.heading("Summary")
	w.font("", 10, colorBody)
	w.para(summary(res, rc))

	w.heading("Ingredient Analysis")
	rows := make([][]string, 0, len(res.Ingredients))
	for _, ing := range res.Ingredients {
		concern := ing.Concerns
		if concern == "" {
			concern = "No concerns"
		}
		rows = append(rows, []string{ing.Name, firstClause(ing.Description), string(ing.Safety), concern})
	}
	w.table([]string{"Ingredient", "Function", "Safety", "Notes"}, []float64{40, 55, 25, 60}, rows)

	if len(res.SpecialWarnings) > 0 {
		w.heading("Special Warnings")
		for _, sw := range res.SpecialWarnings {
			w.font("B", 10, colorText)
			w.para(sw.Title)
			w.font("", 10, colorBody)
			w.para(sw.Description)
		}
	}

	if len(res.Alternatives) > 0 {
		w.heading("Recommended Alternatives")
		rows = rows[:0]
		for _, alt := range res.Alternatives {
			rows = append(rows, []string{alt.Name, alt.Description, string(alt.Rating), strings.Join(alt.Benefits, ", ")})
		}
		w.table([]string{"Product", "Description", "Rating", "Benefits"}, []float64{45, 65, 25, 45}, rows)
	}

	if len(res.ComparisonTable) > 0 {
		w.heading("Comparison")
		rows = rows[:0]
		for _, c := range res.ComparisonTable {
			rows = append(rows, []string{c.Product, string(c.Suitability), c.KeyBenefits, c.FreeFrom})
		}
		w.table([]string{"Product", "Suitability", "Key Benefits", "Free From"}, []float64{45, 30, 60, 45}, rows)
	}

	w.heading("Recommendations")
	w.font("", 10, colorBody)
	for i, rec := range res.Recommendations {
		w.para(fmt.Sprintf("%d. %s", i+1, rec))
	}

	pdf.Ln(4)
	w.font("I", 9, colorMuted)
	w.para(disclaimer)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func subject(rc Context) string {
	who := rc.ChildName
	if who == "" {
		who = "Child"
	}
	conds := "no reported health conditions"
	if len(rc.HealthConditions) > 0 {
		conds = strings.Join(rc.HealthConditions, ", ")
	}
	return fmt.Sprintf("%s, age %s years, %s", who, rc.AgeGroup, conds)
}

func summary(res analysis.Result, rc Context) string {
	s := fmt.Sprintf("This product is generally %s for children aged %s years.",
		strings.ToLower(string(res.Suitability)), rc.AgeGroup)
	if len(res.SpecialWarnings) > 0 {
		s += " " + res.SpecialWarnings[0].Description
	}
	return s
}

func firstClause(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

func suitabilityColor(s analysis.Suitability) [3]int {
	switch s {
	case analysis.SuitabilityGood:
		return [3]int{16, 185, 129}
	case analysis.SuitabilityModerate:
		return [3]int{245, 158, 11}
	default:
		return [3]int{239, 68, 68}
	}
}

type writer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) font(style string, size float64, c [3]int) {
	w.pdf.SetFont("Helvetica", style, size)
	w.pdf.SetTextColor(c[0], c[1], c[2])
}

func (w *writer) line(h float64, txt string) {
	w.pdf.CellFormat(0, h, w.tr(txt), "", 1, "L", false, 0, "")
}

func (w *writer) para(txt string) {
	w.pdf.MultiCell(contentW, lineHeight, w.tr(txt), "", "L", false)
}

func (w *writer) heading(txt string) {
	w.pdf.Ln(4)
	w.font("B", 14, colorText)
	w.line(8, txt+":")
}

// table draws a bordered grid whose rows grow to fit wrapped cell text.
func (w *writer) table(head []string, widths []float64, rows [][]string) {
	pdf := w.pdf
	_, pageH := pdf.GetPageSize()

	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	w.font("B", 9, [3]int{255, 255, 255})
	for i, h := range head {
		pdf.CellFormat(widths[i], 7, w.tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	w.font("", 9, colorBody)
	for _, row := range rows {
		cells := make([][]string, len(row))
		n := 1
		for i, txt := range row {
			cells[i] = pdf.SplitText(w.tr(txt), widths[i]-2)
			if len(cells[i]) > n {
				n = len(cells[i])
			}
		}
		h := float64(n) * lineHeight
		if pdf.GetY()+h > pageH-margin {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		for i := range row {
			pdf.Rect(x, y, widths[i], h, "D")
			pdf.SetXY(x, y)
			pdf.MultiCell(widths[i], lineHeight, strings.Join(cells[i], "\n"), "", "L", false)
			x += widths[i]
		}
		pdf.SetXY(margin, y+h)
	}
}
