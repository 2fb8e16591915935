package journal

import (
	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/relativity"
)

// TransitionRecorder returns a docking transition observer that journals each
// change. rotation supplies the value to store alongside the transition.
// Write errors are logged and dropped so the pipeline never stalls on I/O.
func (j *Journal) TransitionRecorder(sessionID string, rotation func(docking.Transition) float64) func(docking.Transition) {
	return func(tr docking.Transition) {
		var rot float64
		if rotation != nil {
			rot = rotation(tr)
		}
		if err := j.RecordTransition(sessionID, tr, rot); err != nil {
			monitoring.Logf("journal: %v", err)
		}
	}
}

// ReadoutRecorder returns a simulator observer that journals every n-th
// readout. n <= 0 disables it.
func (j *Journal) ReadoutRecorder(sessionID string, every int) func(relativity.Readout) {
	return func(r relativity.Readout) {
		if every <= 0 || r.Tick%uint64(every) != 0 {
			return
		}
		if err := j.RecordReadout(sessionID, r); err != nil {
			monitoring.Logf("journal: %v", err)
		}
	}
}
