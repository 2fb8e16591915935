package relativity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/endurance/internal/units"
)

// EarthTime is the earth clock rendered in the largest sensible unit.
type EarthTime struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// FormatShipTime renders seconds as HH:MM:SS.d. The arithmetic is done on
// whole deciseconds so accumulated float error (0.7999...) cannot drop a
// digit. Hours are not capped at two digits.
func FormatShipTime(totalSeconds float64) string {
	if !(totalSeconds > 0) || math.IsInf(totalSeconds, 0) {
		totalSeconds = 0
	}
	ds := int64(math.Floor(totalSeconds*10 + 1e-6))
	hrs := ds / 36000
	mins := (ds % 36000) / 600
	secs := (ds % 600) / 10
	return fmt.Sprintf("%02d:%02d:%02d.%d", hrs, mins, secs, ds%10)
}

// FormatEarthTime picks the unit by magnitude (see units.Scale) and renders
// the value with that unit's fixed decimals.
func FormatEarthTime(totalSeconds float64) EarthTime {
	if !(totalSeconds > 0) {
		totalSeconds = 0
	}
	u := units.ForSeconds(totalSeconds)
	return EarthTime{
		Value: strconv.FormatFloat(u.Convert(totalSeconds), 'f', u.Decimals, 64),
		Unit:  u.Name,
	}
}

// FormatFactor renders a dilation factor: one decimal below 1000, otherwise
// one-digit scientific notation without exponent padding ("3.0e+3").
func FormatFactor(f float64) string {
	if f < 1000 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	s := strconv.FormatFloat(f, 'e', 1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

// FormatGravity renders the gravity parameter in g ("1.50g" for 150).
func FormatGravity(g float64) string {
	return strconv.FormatFloat(g/100, 'f', 2, 64) + "g"
}
