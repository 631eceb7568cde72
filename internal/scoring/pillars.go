package scoring

type Category string

const (
	CategoryOutput     Category = "A"
	CategoryConduct    Category = "B"
	CategoryLeadership Category = "C"
)

const (
	PillarCount = 18
	MinScore    = 1
	MaxScore    = 5
)

type Pillar struct {
	ID       int
	Category Category
	Name     string
	// Output pillars: which figure the reality score is measured from.
	measure measure
	// Leadership pillars: share of the coverage/self term in the blend.
	blendWeight float64
}

type measure int

const (
	measureNone measure = iota
	measurePersonalMargin
	measurePersonalNA
	measureTotalMargin
	measureTotalNA
	measureQualityMix
	measureDisciplineMix
)

var pillars = []Pillar{
	{ID: 1, Category: CategoryOutput, Name: "Pencapaian Margin Pribadi", measure: measurePersonalMargin},
	{ID: 2, Category: CategoryOutput, Name: "Akuisisi Nasabah Baru", measure: measurePersonalNA},
	{ID: 3, Category: CategoryOutput, Name: "Kontribusi Margin Tim", measure: measureTotalMargin},
	{ID: 4, Category: CategoryOutput, Name: "Pertumbuhan Nasabah Tim", measure: measureTotalNA},
	{ID: 5, Category: CategoryOutput, Name: "Kualitas Pendapatan", measure: measureQualityMix},
	{ID: 6, Category: CategoryOutput, Name: "Disiplin Target", measure: measureDisciplineMix},

	{ID: 7, Category: CategoryConduct, Name: "Integritas"},
	{ID: 8, Category: CategoryConduct, Name: "Disiplin Waktu"},
	{ID: 9, Category: CategoryConduct, Name: "Komunikasi"},
	{ID: 10, Category: CategoryConduct, Name: "Kerja Sama"},
	{ID: 11, Category: CategoryConduct, Name: "Inisiatif"},
	{ID: 12, Category: CategoryConduct, Name: "Kepatuhan Prosedur"},

	{ID: 13, Category: CategoryLeadership, Name: "Coaching", blendWeight: 0.6},
	{ID: 14, Category: CategoryLeadership, Name: "Delegasi", blendWeight: 0.4},
	{ID: 15, Category: CategoryLeadership, Name: "Pengembangan Tim", blendWeight: 0.6},
	{ID: 16, Category: CategoryLeadership, Name: "Visi dan Arah", blendWeight: 0.3},
	{ID: 17, Category: CategoryLeadership, Name: "Pengambilan Keputusan", blendWeight: 0.4},
	{ID: 18, Category: CategoryLeadership, Name: "Memimpin Perubahan", blendWeight: 0.3},
}

var categoryWeights = map[Category]float64{
	CategoryOutput:     0.5,
	CategoryConduct:    0.3,
	CategoryLeadership: 0.2,
}

// Pillars returns a copy of the fixed catalog ordered by id.
func Pillars() []Pillar {
	out := make([]Pillar, len(pillars))
	copy(out, pillars)
	return out
}

func PillarByID(id int) (Pillar, bool) {
	if id < 1 || id > len(pillars) {
		return Pillar{}, false
	}
	return pillars[id-1], true
}
