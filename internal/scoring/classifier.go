// Package scoring turns 18 self-assessed pillar scores plus the quarter's
// measured figures into reality scores, zones, a profile tag and a
// promotion/demotion recommendation. Classify is a pure function.
package scoring

import (
	"fmt"
	"math"
	"sort"

	scoringerrors "aisg-audit/internal/scoring/errors"

	"github.com/shopspring/decimal"
)

type Answer struct {
	PillarID int    `json:"pillar_id"`
	Category string `json:"category,omitempty"`
	Score    int    `json:"score"`
	Notes    string `json:"notes,omitempty"`
}

type Input struct {
	Answers      []Answer
	Metrics      Metrics
	Target       Target
	TenureMonths int
	TeamSize     int
	Coverage     int
}

type PillarResult struct {
	PillarID int      `json:"pillar_id"`
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Self     int      `json:"self"`
	Reality  float64  `json:"reality"`
	Gap      float64  `json:"gap"`
	Notes    string   `json:"notes,omitempty"`
}

type Result struct {
	Pillars        []PillarResult `json:"pillars"`
	TotalSelf      int            `json:"total_self"`
	TotalReality   float64        `json:"total_reality"`
	TotalGap       float64        `json:"total_gap"`
	AvgOutput      float64        `json:"avg_output"`
	AvgConduct     float64        `json:"avg_conduct"`
	AvgLeadership  float64        `json:"avg_leadership"`
	WeightedScore  float64        `json:"weighted_score"`
	ZonaKinerja    Zone           `json:"zona_kinerja"`
	ZonaPerilaku   Zone           `json:"zona_perilaku"`
	ZonaFinal      Zone           `json:"zona_final"`
	Profile        Profile        `json:"profile"`
	Prodem         Recommendation `json:"prodem"`
	MarginOnTarget bool           `json:"margin_on_target"`
}

// CheckAnswers mengembalikan daftar pilar yang belum dijawab dan pesan untuk
// jawaban yang tidak valid (id di luar katalog, skor di luar 1-5, kategori salah, duplikat).
func CheckAnswers(answers []Answer) (missing []int, invalid []string) {
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		p, ok := PillarByID(a.PillarID)
		if !ok {
			invalid = append(invalid, fmt.Sprintf("pillar %d does not exist", a.PillarID))
			continue
		}
		if seen[a.PillarID] {
			invalid = append(invalid, fmt.Sprintf("pillar %d answered more than once", a.PillarID))
			continue
		}
		seen[a.PillarID] = true
		if a.Score < MinScore || a.Score > MaxScore {
			invalid = append(invalid, fmt.Sprintf("pillar %d score must be between %d and %d", a.PillarID, MinScore, MaxScore))
		}
		if a.Category != "" && Category(a.Category) != p.Category {
			invalid = append(invalid, fmt.Sprintf("pillar %d belongs to category %s", a.PillarID, p.Category))
		}
	}
	for _, p := range pillars {
		if !seen[p.ID] {
			missing = append(missing, p.ID)
		}
	}
	return missing, invalid
}

// ValidateAnswers membungkus CheckAnswers menjadi error yang siap dikirim ke client.
func ValidateAnswers(answers []Answer) error {
	missing, invalid := CheckAnswers(answers)
	if len(invalid) > 0 {
		return scoringerrors.ErrInvalidPillarAnswer.WithDetails(invalid)
	}
	if len(missing) > 0 {
		return scoringerrors.ErrMissingPillars.
			WithMessage(fmt.Sprintf("Missing answers for pillars %v", missing)).
			WithDetails(map[string]any{"missing_pillars": missing})
	}
	return nil
}

func Classify(in Input) (Result, error) {
	if err := ValidateAnswers(in.Answers); err != nil {
		return Result{}, err
	}

	answers := make([]Answer, len(in.Answers))
	copy(answers, in.Answers)
	sort.Slice(answers, func(i, j int) bool { return answers[i].PillarID < answers[j].PillarID })

	r := ratios(in.Metrics, in.Target)
	res := Result{Pillars: make([]PillarResult, 0, PillarCount)}

	// Output dihitung lebih dulu karena conduct dan leadership memakai indeksnya.
	var outputSum float64
	for _, a := range answers[:6] {
		p := pillars[a.PillarID-1]
		reality := round2(outputReality(p.measure, r))
		outputSum += reality
		res.Pillars = append(res.Pillars, pillarResult(p, a, reality))
	}
	outputIndex := outputSum / 6

	coverageScore := 1 + 4*float64(clampInt(in.Coverage, 0, 100))/100
	teamIndex := (res.Pillars[2].Reality + res.Pillars[3].Reality) / 2

	for _, a := range answers[6:] {
		p := pillars[a.PillarID-1]
		var reality float64
		switch p.Category {
		case CategoryConduct:
			reality = clamp(float64(a.Score)+(outputIndex-3)*0.5, MinScore, MaxScore)
		case CategoryLeadership:
			if in.TeamSize > 0 {
				reality = (1-p.blendWeight)*teamIndex + p.blendWeight*coverageScore
			} else {
				reality = (1-p.blendWeight)*outputIndex + p.blendWeight*float64(a.Score)
			}
		}
		res.Pillars = append(res.Pillars, pillarResult(p, a, round2(reality)))
	}

	var totalReality float64
	sums := map[Category]float64{}
	gaps := map[Category]float64{}
	selfs := map[Category]int{}
	for _, p := range res.Pillars {
		res.TotalSelf += p.Self
		totalReality += p.Reality
		sums[p.Category] += p.Reality
		gaps[p.Category] += p.Gap
		selfs[p.Category] += p.Self
	}
	res.TotalReality = round2(totalReality)
	res.TotalGap = round2(res.TotalReality - float64(res.TotalSelf))
	res.AvgOutput = round2(sums[CategoryOutput] / 6)
	res.AvgConduct = round2(sums[CategoryConduct] / 6)
	res.AvgLeadership = round2(sums[CategoryLeadership] / 6)
	res.WeightedScore = round2(
		categoryWeights[CategoryOutput]*sums[CategoryOutput]/6 +
			categoryWeights[CategoryConduct]*sums[CategoryConduct]/6 +
			categoryWeights[CategoryLeadership]*sums[CategoryLeadership]/6,
	)

	res.ZonaKinerja = zoneFromAverage(sums[CategoryOutput] / 6)
	res.ZonaPerilaku = zoneFromAverage(sums[CategoryConduct] / 6)
	if gaps[CategoryConduct]/6 <= -1.5 {
		res.ZonaPerilaku = res.ZonaPerilaku.demote()
	}
	res.ZonaFinal = combineZones(res.ZonaKinerja, res.ZonaPerilaku)

	res.Profile = pickProfile(profileInput{
		weighted:       sums[CategoryOutput]/6*categoryWeights[CategoryOutput] + sums[CategoryConduct]/6*categoryWeights[CategoryConduct] + sums[CategoryLeadership]/6*categoryWeights[CategoryLeadership],
		avgGap:         (gaps[CategoryOutput] + gaps[CategoryConduct] + gaps[CategoryLeadership]) / PillarCount,
		leadershipSelf: float64(selfs[CategoryLeadership]) / 6,
		teamSize:       in.TeamSize,
		coverage:       in.Coverage,
	})

	res.MarginOnTarget = in.Metrics.TotalMargin().GreaterThan(in.Target.TotalMargin)
	res.Prodem = recommend(res.ZonaFinal, res.Profile, in.TenureMonths, res.MarginOnTarget)

	return res, nil
}

type ratioSet struct {
	personalMargin float64
	personalNA     float64
	totalMargin    float64
	totalNA        float64
}

func ratios(m Metrics, t Target) ratioSet {
	return ratioSet{
		personalMargin: ratio(m.PersonalMargin, t.PersonalMargin),
		personalNA:     ratio(decimal.NewFromInt(m.PersonalNA), decimal.NewFromInt(t.PersonalNA)),
		totalMargin:    ratio(m.TotalMargin(), t.TotalMargin),
		totalNA:        ratio(decimal.NewFromInt(m.TotalNA()), decimal.NewFromInt(t.TotalNA)),
	}
}

func ratio(actual, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	return actual.DivRound(target, 6).InexactFloat64()
}

// ratioScore: 0% target -> 1, 100% -> 4.2, 125% ke atas -> 5.
func ratioScore(r float64) float64 {
	return 1 + 4*clamp(r/1.25, 0, 1)
}

func outputReality(m measure, r ratioSet) float64 {
	switch m {
	case measurePersonalMargin:
		return ratioScore(r.personalMargin)
	case measurePersonalNA:
		return ratioScore(r.personalNA)
	case measureTotalMargin:
		return ratioScore(r.totalMargin)
	case measureTotalNA:
		return ratioScore(r.totalNA)
	case measureQualityMix:
		return 0.7*ratioScore(r.totalMargin) + 0.3*ratioScore(r.totalNA)
	case measureDisciplineMix:
		return 0.5*ratioScore(r.personalMargin) + 0.5*ratioScore(r.personalNA)
	default:
		return MinScore
	}
}

func pillarResult(p Pillar, a Answer, reality float64) PillarResult {
	return PillarResult{
		PillarID: p.ID,
		Category: p.Category,
		Name:     p.Name,
		Self:     a.Score,
		Reality:  reality,
		Gap:      round2(reality - float64(a.Score)),
		Notes:    a.Notes,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
