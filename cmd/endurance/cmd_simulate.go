package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/endurance/internal/relativity"
	"github.com/banshee-data/endurance/internal/timeutil"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the dual-clock simulator for a number of ticks",
		Long: `simulate ticks the relativity simulator on a simulated clock and prints
its readouts.

--schedule moves the gravity slider once a number of ticks have run, e.g.
"0:100,10:150,20:185" starts at 100, moves to 150 after tick 10 and to 185
after tick 20.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuning, err := loadTuning(cmd)
			if err != nil {
				return err
			}
			ticks, _ := cmd.Flags().GetInt("ticks")
			every, _ := cmd.Flags().GetInt("every")
			raw, _ := cmd.Flags().GetString("schedule")

			schedule, err := parseGravitySchedule(raw)
			if err != nil {
				return err
			}
			return runSimulate(newEmitter(cmd), relativity.ConfigFromTuning(tuning), ticks, every, schedule)
		},
	}
	cmd.Flags().Int("ticks", 100, "Number of ticks to run")
	cmd.Flags().Int("every", 10, "Print every n-th readout (the last one is always printed)")
	cmd.Flags().String("schedule", "", "Gravity changes as tick:gravity pairs, comma separated")
	return cmd
}

type gravityChange struct {
	tick    int
	gravity float64
}

func parseGravitySchedule(raw string) ([]gravityChange, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []gravityChange
	for _, part := range strings.Split(raw, ",") {
		tickStr, gStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid schedule entry %q (want tick:gravity)", part)
		}
		tick, err := strconv.Atoi(tickStr)
		if err != nil || tick < 0 {
			return nil, fmt.Errorf("invalid tick in %q", part)
		}
		g, err := strconv.ParseFloat(gStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid gravity in %q", part)
		}
		out = append(out, gravityChange{tick: tick, gravity: g})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].tick < out[j].tick })
	return out, nil
}

func runSimulate(out *emitter, cfg relativity.Config, ticks, every int, schedule []gravityChange) error {
	clock := timeutil.NewMockClock(time.Unix(0, 0).UTC())
	sim := relativity.NewSimulator(cfg, clock, nil)

	next := 0
	for n := 1; n <= ticks; n++ {
		for next < len(schedule) && schedule[next].tick < n {
			sim.SetGravity(schedule[next].gravity)
			next++
		}
		clock.Advance(sim.Period())
		r, _ := sim.Tick()

		last := n == ticks
		if !last && (every <= 0 || r.Tick%uint64(every) != 0) {
			continue
		}
		if err := out.emit(r, "tick=%-5d ship=%s earth=%s %s factor=%s gravity=%s %s",
			r.Tick, r.Ship, r.Earth.Value, r.Earth.Unit, r.FactorText, r.GravityText, r.Severity); err != nil {
			return err
		}
	}
	return nil
}
