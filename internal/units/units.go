// Package units provides shared constants and selection for the time units
// used by the coordinate-time (earth clock) readout.
package units

// Unit constants
const (
	SEC  = "SEC"
	MIN  = "MIN"
	HRS  = "HRS"
	DAYS = "DAYS"
	YRS  = "YRS"
)

// Seconds per unit. A year is fixed at 365 days.
const (
	SecondsPerMinute = 60
	SecondsPerHour   = 3600
	SecondsPerDay    = 86400
	SecondsPerYear   = 31536000
)

// TimeUnit describes how a magnitude of seconds is rendered.
type TimeUnit struct {
	Name     string  // display label, one of the unit constants
	Seconds  float64 // seconds per one of this unit
	Decimals int     // fixed decimal places shown
	Below    float64 // exclusive upper bound in seconds; 0 means unbounded
}

// Scale lists the units in ascending order of magnitude.
var Scale = []TimeUnit{
	{Name: SEC, Seconds: 1, Decimals: 1, Below: SecondsPerMinute},
	{Name: MIN, Seconds: SecondsPerMinute, Decimals: 1, Below: SecondsPerHour},
	{Name: HRS, Seconds: SecondsPerHour, Decimals: 2, Below: SecondsPerDay},
	{Name: DAYS, Seconds: SecondsPerDay, Decimals: 2, Below: SecondsPerYear},
	{Name: YRS, Seconds: SecondsPerYear, Decimals: 2},
}

// ValidUnits contains all valid unit values
var ValidUnits = []string{SEC, MIN, HRS, DAYS, YRS}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ForSeconds picks the unit for a total number of seconds: the first unit
// whose bound the magnitude stays under.
func ForSeconds(totalSeconds float64) TimeUnit {
	for _, u := range Scale {
		if u.Below == 0 || totalSeconds < u.Below {
			return u
		}
	}
	return Scale[len(Scale)-1]
}

// Convert expresses totalSeconds in the given unit.
func (u TimeUnit) Convert(totalSeconds float64) float64 {
	return totalSeconds / u.Seconds
}
