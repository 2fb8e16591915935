// Package monitoring holds the diagnostic logger shared by the docking
// pipeline, the relativity simulator and their hosts.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger so tests can capture or mute transition logs.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into a slice for the lifetime of a test and returns
// a function that yields the formatted lines so far. The previous logger is
// restored by the returned restore func.
func Capture(sprintf func(format string, v ...interface{}) string) (lines func() []string, restore func()) {
	prev := Logf
	var got []string
	Logf = func(format string, v ...interface{}) {
		got = append(got, sprintf(format, v...))
	}
	return func() []string {
			out := make([]string, len(got))
			copy(out, got)
			return out
		}, func() {
			Logf = prev
		}
}
