package relativity

// ClockPair holds proper (ship) and coordinate (earth) elapsed seconds.
// Both only grow between resets, and EarthSeconds >= ShipSeconds as long as
// every factor passed to Advance is at least 1.
type ClockPair struct {
	ShipSeconds  float64 `json:"ship_seconds"`
	EarthSeconds float64 `json:"earth_seconds"`
}

// Advance moves ship time by dt and earth time by dt*factor.
func (c *ClockPair) Advance(dt, factor float64) {
	c.ShipSeconds += dt
	c.EarthSeconds += dt * factor
}

// Reset zeroes both clocks together.
func (c *ClockPair) Reset() {
	*c = ClockPair{}
}
