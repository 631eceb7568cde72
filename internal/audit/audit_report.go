package audit

import (
	"bytes"
	"fmt"

	"aisg-audit/internal/employee"
	"aisg-audit/internal/scoring"

	"github.com/jung-kurt/gofpdf"
)

func renderReport(a Audit, empl *employee.Employee) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Sales Performance Audit")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", empl.FullName, empl.Code))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Position: %s", empl.PositionCode))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %d Q%d", a.Year, a.Quarter))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Tenure: %d months", a.TenureMonths))
	pdf.Ln(10)

	target := a.Target.Data()
	section(pdf, "Performance")
	pdf.Cell(0, 7, fmt.Sprintf("Personal margin: %s (target %s)", a.PersonalMargin.StringFixed(2), target.PersonalMargin.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Personal NA: %d (target %d)", a.PersonalNA, target.PersonalNA))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Team margin: %s, team NA: %d", a.TeamMargin.StringFixed(2), a.TeamNA))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Team size: %d, coverage: %d%%", a.TeamSize, a.Coverage))
	pdf.Ln(10)

	section(pdf, "Classification")
	pdf.Cell(0, 7, fmt.Sprintf("Zona kinerja: %s, zona perilaku: %s, zona final: %s", a.ZonaKinerja, a.ZonaPerilaku, a.ZonaFinal))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Profile: %s", a.Profile))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Self %d, reality %.2f, gap %.2f", a.TotalSelf, a.TotalReality, a.TotalGap))
	pdf.Ln(6)
	prodem := a.ProdemDetail.Data()
	pdf.Cell(0, 7, fmt.Sprintf("Recommendation: %s", a.ProdemRecommendation))
	pdf.Ln(6)
	if prodem.Reason != "" {
		pdf.MultiCell(0, 6, prodem.Reason, "", "L", false)
	}
	for _, item := range prodem.Checklist {
		mark := "[ ]"
		if item.Met {
			mark = "[x]"
		}
		pdf.Cell(0, 6, fmt.Sprintf("%s %s", mark, item.Requirement))
		pdf.Ln(5)
	}
	pdf.Ln(6)

	section(pdf, "Pillars")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(100, 7, "Pillar", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Self", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Reality", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Gap", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range a.Pillars {
		name := ""
		if def, ok := scoring.PillarByID(p.PillarID); ok {
			name = def.Name
		}
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", p.PillarID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(100, 6, fmt.Sprintf("%s %s", p.Category, name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", p.Self), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", p.Reality), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", p.Gap), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	section(pdf, "Narrative")
	pdf.MultiCell(0, 6, a.Narrative, "", "L", false)

	if warnings := a.Warnings.Data(); len(warnings) > 0 {
		pdf.Ln(4)
		section(pdf, "Warnings")
		for _, w := range warnings {
			pdf.MultiCell(0, 6, "- "+w, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}
