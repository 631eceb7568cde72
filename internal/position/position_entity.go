package position

import (
	"strings"
	"time"
)

type Position struct {
	Code      string `gorm:"primaryKey;size:10"`
	Name      string `gorm:"size:255;not null"`
	Level     int    `gorm:"not null;uniqueIndex:uq_position_level"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Catalog adalah daftar posisi yang sah untuk kolom "posisi" pada import.
// Level lebih kecil berarti otoritas lebih tinggi.
var Catalog = []Position{
	{Code: "CEO", Name: "Chief Executive Officer", Level: 1},
	{Code: "CBO", Name: "Chief Business Officer", Level: 2},
	{Code: "BrM", Name: "Branch Manager", Level: 3},
	{Code: "VBM", Name: "Vice Branch Manager", Level: 4},
	{Code: "SEM", Name: "Senior Executive Manager", Level: 5},
	{Code: "EM", Name: "Executive Manager", Level: 6},
	{Code: "SBM", Name: "Senior Business Manager", Level: 7},
	{Code: "BsM", Name: "Business Manager", Level: 8},
	{Code: "BC", Name: "Business Consultant", Level: 9},
}

// Lookup mencocokkan kode posisi tanpa membedakan huruf besar/kecil dan
// mengembalikan entri katalog dengan kode kanoniknya.
func Lookup(code string) (Position, bool) {
	code = strings.TrimSpace(code)
	for _, p := range Catalog {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return Position{}, false
}

// LevelOf returns 0 for unknown codes.
func LevelOf(code string) int {
	p, ok := Lookup(code)
	if !ok {
		return 0
	}
	return p.Level
}

func Codes() []string {
	out := make([]string, len(Catalog))
	for i, p := range Catalog {
		out[i] = p.Code
	}
	return out
}
