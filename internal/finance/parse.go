package finance

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumberOrZero parses human-entered numeric text, returning 0 for
// anything unparseable. Bad input means "no value", never a rejected edit,
// so the calculator keeps working on garbage entry. Comma decimals are
// accepted and a trailing % is tolerated. ParseFloat also accepts "inf" and
// "nan" spellings; those count as garbage too, since a non-finite value in
// state would blow up every downstream computation and formatter.
func ParseNumberOrZero(text string) float64 {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// ParseCountOrZero parses a unit count the same way, truncating fractions
// and clamping negatives to 0.
func ParseCountOrZero(text string) int {
	v := ParseNumberOrZero(text)
	if v < 0 {
		return 0
	}
	return int(v)
}

// FractionFromPercentText converts human percent text (0-100) to the stored
// fraction in [0,1], with the same lenient parsing as ParseNumberOrZero.
func FractionFromPercentText(text string) float64 {
	return clamp01(ParseNumberOrZero(text) / 100)
}

// clamp01 keeps fraction-valued fields inside [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
