package performance

import "github.com/shopspring/decimal"

type Quarterly struct {
	Margin        decimal.Decimal
	NA            int64
	MissingMonths []int
}

func (q Quarterly) Complete() bool {
	return len(q.MissingMonths) == 0
}

// Summarize menjumlahkan baris bulanan milik satu kuartal. Baris di luar
// kuartal diabaikan; bulan yang tidak ada dicatat di MissingMonths.
func Summarize(rows []MonthlyPerformance, quarter int) Quarterly {
	seen := make(map[int]bool, 3)
	out := Quarterly{Margin: decimal.Zero}
	for _, r := range rows {
		if QuarterOf(r.Month) != quarter || seen[r.Month] {
			continue
		}
		seen[r.Month] = true
		out.Margin = out.Margin.Add(r.Margin)
		out.NA += r.NA
	}
	for _, m := range MonthsOf(quarter) {
		if !seen[m] {
			out.MissingMonths = append(out.MissingMonths, m)
		}
	}
	return out
}
