// Package docking turns scroll progress through the docking section into the
// station's visual state and detects and confirms alignment.
//
// Responsibilities: per-frame spring smoothing of progress, mapping to the
// rotation/opacity/scale channels, alignment window evaluation, and the
// idle → aligned → confirmed lifecycle with its deferred "advance to the next
// section" signal.
// Key types: Pipeline, Frame, Monitor, StateMachine, FrameLoop.
//
// Each frame runs filter → mapping → window check → transition in that order.
// The window check has no hysteresis: a rotation hovering on a bound flips
// in and out of the window frame by frame.
package docking
