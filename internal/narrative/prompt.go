package narrative

import (
	"fmt"
	"strings"
)

const systemPrompt = "Anda adalah analis kinerja penjualan. Tulis ringkasan audit kuartalan dalam Bahasa Indonesia, " +
	"maksimal empat paragraf. Jangan mengubah angka, zona, profil, atau rekomendasi yang diberikan."

func buildPrompt(req Request) (string, string) {
	c := req.Classification
	var b strings.Builder
	fmt.Fprintf(&b, "Karyawan: %s (%s), posisi %s\n", req.EmployeeName, req.EmployeeCode, req.PositionCode)
	fmt.Fprintf(&b, "Periode: Q%d %d\n", req.Quarter, req.Year)
	fmt.Fprintf(&b, "Margin personal %s, NA personal %d, margin tim %s, NA tim %d\n",
		req.Metrics.PersonalMargin.StringFixed(2), req.Metrics.PersonalNA,
		req.Metrics.TeamMargin.StringFixed(2), req.Metrics.TeamNA)
	fmt.Fprintf(&b, "Target margin total %s, NA total %d (sumber: %s)\n",
		req.Target.TotalMargin.StringFixed(2), req.Target.TotalNA, req.Target.Source)
	fmt.Fprintf(&b, "Skor diri %d, skor realita %.2f, gap %.2f\n", c.TotalSelf, c.TotalReality, c.TotalGap)
	fmt.Fprintf(&b, "Zona kinerja %s, zona perilaku %s, zona akhir %s, profil %s\n",
		c.ZonaKinerja, c.ZonaPerilaku, c.ZonaFinal, c.Profile)
	fmt.Fprintf(&b, "Rekomendasi %s: %s\n", c.Prodem.Type, c.Prodem.Reason)
	if req.TeamSize > 0 {
		fmt.Fprintf(&b, "Cakupan audit tim %d%% dari %d bawahan langsung\n", req.Coverage, req.TeamSize)
	}
	for _, p := range c.Pillars {
		fmt.Fprintf(&b, "- Pilar %d %s: diri %d, realita %.2f, gap %.2f\n", p.PillarID, p.Name, p.Self, p.Reality, p.Gap)
	}
	return systemPrompt, b.String()
}
