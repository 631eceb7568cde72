package narrative

import (
	"fmt"
	"sort"
	"strings"

	"aisg-audit/internal/scoring"
)

// Template menghasilkan narasi yang sama persis untuk input yang sama.
func Template(req Request) string {
	c := req.Classification
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s) menutup Q%d %d di zona %s dengan profil %s. ",
		nameOrCode(req), req.PositionCode, req.Quarter, req.Year, c.ZonaFinal, c.Profile)
	fmt.Fprintf(&b, "Total skor diri %d berbanding skor realita %.2f (gap %.2f).\n\n",
		c.TotalSelf, c.TotalReality, c.TotalGap)

	fmt.Fprintf(&b, "Margin total %s terhadap target %s dan NA total %d terhadap target %d. ",
		req.Metrics.TotalMargin().StringFixed(2), req.Target.TotalMargin.StringFixed(2),
		req.Metrics.TotalNA(), req.Target.TotalNA)
	fmt.Fprintf(&b, "Zona kinerja %s, zona perilaku %s.\n\n", c.ZonaKinerja, c.ZonaPerilaku)

	if gaps := widestGaps(c.Pillars, 3); len(gaps) > 0 {
		b.WriteString("Selisih terbesar antara persepsi dan realita: ")
		parts := make([]string, len(gaps))
		for i, p := range gaps {
			parts[i] = fmt.Sprintf("%s (%+.2f)", p.Name, p.Gap)
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".\n\n")
	}

	if req.TeamSize > 0 && req.Coverage < 100 {
		fmt.Fprintf(&b, "Cakupan audit tim baru %d%%, angka tim dapat berubah setelah bawahan lain diaudit.\n\n", req.Coverage)
	}

	fmt.Fprintf(&b, "Rekomendasi: %s. %s %s Langkah berikutnya: %s",
		c.Prodem.Type, c.Prodem.Reason, c.Prodem.Consequence, c.Prodem.NextStep)

	return b.String()
}

func nameOrCode(req Request) string {
	if req.EmployeeName != "" {
		return req.EmployeeName
	}
	return req.EmployeeCode
}

func widestGaps(pillars []scoring.PillarResult, n int) []scoring.PillarResult {
	sorted := make([]scoring.PillarResult, 0, len(pillars))
	for _, p := range pillars {
		if p.Gap != 0 {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		gi, gj := abs(sorted[i].Gap), abs(sorted[j].Gap)
		if gi != gj {
			return gi > gj
		}
		return sorted[i].PillarID < sorted[j].PillarID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
