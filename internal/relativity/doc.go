// Package relativity simulates two clocks drifting apart under gravitational
// time dilation.
//
// Responsibilities: the dilation curve (gravity parameter to factor), the
// shared gravity cell written by user input and read by the tick, the ship /
// earth clock pair, the fixed-period tick scheduler with pause, resume and
// reset, and the pure formatting of both clock readouts.
// Key types: Gravity, ClockPair, Simulator, Readout.
//
// The tick advances by the configured period, never by measured wall time, so
// missed ticks are lost rather than compensated.
package relativity
