package scoring

import "github.com/shopspring/decimal"

const (
	TargetSourcePriorQuarter = "prior_quarter"
	TargetSourceDefault      = "default"
)

var (
	DefaultMarginBaseline       = decimal.NewFromInt(10000)
	DefaultNABaseline     int64 = 3
)

type Metrics struct {
	PersonalMargin decimal.Decimal `json:"personal_margin"`
	PersonalNA     int64           `json:"personal_na"`
	TeamMargin     decimal.Decimal `json:"team_margin"`
	TeamNA         int64           `json:"team_na"`
}

func (m Metrics) TotalMargin() decimal.Decimal {
	return m.PersonalMargin.Add(m.TeamMargin)
}

func (m Metrics) TotalNA() int64 {
	return m.PersonalNA + m.TeamNA
}

type Target struct {
	PersonalMargin decimal.Decimal `json:"personal_margin"`
	PersonalNA     int64           `json:"personal_na"`
	TotalMargin    decimal.Decimal `json:"total_margin"`
	TotalNA        int64           `json:"total_na"`
	Source         string          `json:"source"`
}

// DefaultTarget dipakai jika belum ada kuartal sebelumnya. Target total
// diskalakan dengan jumlah bawahan langsung supaya manager baru tidak
// otomatis melampaui target hanya karena punya tim.
func DefaultTarget(teamSize int) Target {
	if teamSize < 0 {
		teamSize = 0
	}
	headcount := int64(teamSize + 1)
	return Target{
		PersonalMargin: DefaultMarginBaseline,
		PersonalNA:     DefaultNABaseline,
		TotalMargin:    DefaultMarginBaseline.Mul(decimal.NewFromInt(headcount)),
		TotalNA:        DefaultNABaseline * headcount,
		Source:         TargetSourceDefault,
	}
}

// TargetFromPrior membangun target dari realisasi kuartal sebelumnya. Komponen
// yang nol (atau negatif) diganti baseline default agar rasio tetap terdefinisi.
func TargetFromPrior(prior Metrics, teamSize int) Target {
	def := DefaultTarget(teamSize)
	t := Target{
		PersonalMargin: prior.PersonalMargin,
		PersonalNA:     prior.PersonalNA,
		TotalMargin:    prior.TotalMargin(),
		TotalNA:        prior.TotalNA(),
		Source:         TargetSourcePriorQuarter,
	}

	defaulted := 0
	if !t.PersonalMargin.IsPositive() {
		t.PersonalMargin = def.PersonalMargin
		defaulted++
	}
	if t.PersonalNA <= 0 {
		t.PersonalNA = def.PersonalNA
		defaulted++
	}
	if !t.TotalMargin.IsPositive() {
		t.TotalMargin = def.TotalMargin
		defaulted++
	}
	if t.TotalNA <= 0 {
		t.TotalNA = def.TotalNA
		defaulted++
	}
	if defaulted == 4 {
		t.Source = TargetSourceDefault
	}
	return t
}
