// Package numeric parses the loosely formatted numbers found in uploaded
// spreadsheets (both "1,234.56" and "1.234,56") into exact decimals.
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyPrefixes = []string{"idr", "rp.", "rp"}

const (
	// kolom numeric(20,2): maksimal 18 digit di depan koma
	maxIntegerDigits = 18
	maxInputLength   = 64
)

var maxMagnitude = decimal.New(1, maxIntegerDigits)

// Normalize selalu mengembalikan nilai; input kosong atau tidak valid menjadi nol.
func Normalize(s string) decimal.Decimal {
	v, _ := NormalizeStrict(s)
	return v
}

// NormalizeStrict sama dengan Normalize, tetapi ok=false jika input tidak kosong
// namun gagal diparsing. Nilai yang dikembalikan tetap nol pada kasus itu.
func NormalizeStrict(s string) (decimal.Decimal, bool) {
	cleaned := clean(s)
	if cleaned == "" {
		return decimal.Zero, true
	}
	if len(cleaned) > maxInputLength {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// 1,234.56
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	// hanya notasi biasa; "1e30" dan sejenisnya ditolak sebelum diparsing
	if !plainNumber(cleaned) {
		return decimal.Zero, false
	}
	cleaned = strings.TrimPrefix(cleaned, "+")

	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if v.Abs().GreaterThanOrEqual(maxMagnitude) {
		return decimal.Zero, false
	}
	return v, true
}

// NormalizeCount dipakai untuk metrik NA yang berupa bilangan bulat.
// Pecahan dianggap tidak valid (ok=false, nilai nol) seperti input non-angka.
func NormalizeCount(s string) (int64, bool) {
	v, ok := NormalizeStrict(s)
	if !ok {
		return 0, false
	}
	if !v.Equal(v.Truncate(0)) {
		return 0, false
	}
	return v.IntPart(), true
}

// plainNumber: tanda opsional, digit, paling banyak satu titik desimal.
func plainNumber(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(lower, p) {
			s = s[len(p):]
			break
		}
	}
	return strings.Join(strings.Fields(s), "")
}
