package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/timeutil"
)

func newDockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dock",
		Short: "Replay a progress sweep or script through a docking widget",
		Long: `dock drives a docking widget frame by frame on a simulated clock and
prints its transitions.

Without --input it sweeps progress linearly from --from to --to over --frames
frames, then holds the last value for --hold frames. With --input it reads a
script, one directive per line:

  0.42        one frame at progress 0.42
  0.5 x30     thirty frames at progress 0.5
  confirm     press the confirm control
  # ...       comment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuning, err := loadTuning(cmd)
			if err != nil {
				return err
			}
			input, _ := cmd.Flags().GetString("input")
			every, _ := cmd.Flags().GetInt("every")

			var steps []dockStep
			if input != "" {
				steps, err = readDockScript(cmd, input)
				if err != nil {
					return err
				}
			} else {
				from, _ := cmd.Flags().GetFloat64("from")
				to, _ := cmd.Flags().GetFloat64("to")
				frames, _ := cmd.Flags().GetInt("frames")
				hold, _ := cmd.Flags().GetInt("hold")
				confirm, _ := cmd.Flags().GetBool("confirm")
				steps = sweepScript(from, to, frames, hold, confirm)
			}

			sum, err := runDock(newEmitter(cmd), docking.ConfigFromTuning(tuning), steps, every)
			if err != nil {
				return err
			}
			return newEmitter(cmd).emit(sum, "frames=%d state=%s rotation=%.2f display=%.2f advanced=%t",
				sum.Frames, sum.State, sum.Rotation, sum.DisplayRotation, sum.Advanced)
		},
	}
	cmd.Flags().String("input", "", "Script file, or - for stdin")
	cmd.Flags().Float64("from", 0, "Sweep start progress")
	cmd.Flags().Float64("to", 0.5, "Sweep end progress")
	cmd.Flags().Int("frames", 60, "Sweep length in frames")
	cmd.Flags().Int("hold", 120, "Frames to hold at the end of the sweep")
	cmd.Flags().Bool("confirm", false, "Press confirm after the sweep, then hold again")
	cmd.Flags().Int("every", 0, "Also print every n-th frame (0 prints transitions only)")
	return cmd
}

type dockStep struct {
	progress float64
	repeat   int
	confirm  bool
}

func readDockScript(cmd *cobra.Command, path string) ([]dockStep, error) {
	if path == "-" {
		return parseDockScript(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return parseDockScript(f)
}

func parseDockScript(r io.Reader) ([]dockStep, error) {
	var steps []dockStep
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if text == "confirm" {
			steps = append(steps, dockStep{confirm: true})
			continue
		}

		fields := strings.Fields(text)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: too many fields in %q", line, text)
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid progress %q", line, fields[0])
		}
		repeat := 1
		if len(fields) == 2 {
			n, err := strconv.Atoi(strings.TrimPrefix(fields[1], "x"))
			if err != nil || n < 1 || !strings.HasPrefix(fields[1], "x") {
				return nil, fmt.Errorf("line %d: invalid repeat %q (want xN)", line, fields[1])
			}
			repeat = n
		}
		steps = append(steps, dockStep{progress: v, repeat: repeat})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

func sweepScript(from, to float64, frames, hold int, confirm bool) []dockStep {
	var steps []dockStep
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		steps = append(steps, dockStep{progress: from + (to-from)*t, repeat: 1})
	}
	if hold > 0 {
		steps = append(steps, dockStep{progress: to, repeat: hold})
	}
	if confirm {
		steps = append(steps, dockStep{confirm: true})
		if hold > 0 {
			steps = append(steps, dockStep{progress: to, repeat: hold})
		}
	}
	return steps
}

// dockEvent is one line of dock output.
type dockEvent struct {
	Kind      string         `json:"kind"` // transition, advance, confirm, frame
	AtMs      int64          `json:"at_ms"`
	From      docking.State  `json:"from,omitempty"`
	To        docking.State  `json:"to,omitempty"`
	Confirmed *bool          `json:"confirmed,omitempty"`
	Frame     *docking.Frame `json:"frame,omitempty"`
}

type dockSummary struct {
	Frames          uint64        `json:"frames"`
	State           docking.State `json:"state"`
	Rotation        float64       `json:"rotation"`
	DisplayRotation float64       `json:"display_rotation"`
	Advanced        bool          `json:"advanced"`
}

func runDock(out *emitter, cfg docking.Config, steps []dockStep, every int) (dockSummary, error) {
	start := time.Unix(0, 0).UTC()
	clock := timeutil.NewMockClock(start)
	p := docking.NewPipeline(cfg, clock)
	defer p.Close()
	var cell docking.ProgressCell
	loop := docking.NewFrameLoop(p, &cell, clock, cfg.FrameRate)

	var pending []dockEvent
	elapsed := func() int64 { return clock.Now().Sub(start).Milliseconds() }
	p.Machine().OnTransition(func(tr docking.Transition) {
		pending = append(pending, dockEvent{Kind: "transition", AtMs: tr.At.Sub(start).Milliseconds(), From: tr.From, To: tr.To})
	})
	p.Machine().OnAdvance(func() {
		pending = append(pending, dockEvent{Kind: "advance", AtMs: elapsed()})
	})

	flush := func() error {
		for _, ev := range pending {
			if err := emitDockEvent(out, ev); err != nil {
				return err
			}
		}
		pending = pending[:0]
		return nil
	}

	for _, st := range steps {
		if st.confirm {
			ok := p.Confirm()
			pending = append(pending, dockEvent{Kind: "confirm", AtMs: elapsed(), Confirmed: &ok})
			if err := flush(); err != nil {
				return dockSummary{}, err
			}
			continue
		}
		cell.Set(st.progress)
		for i := 0; i < st.repeat; i++ {
			clock.Advance(loop.Interval())
			f := loop.Step()
			if every > 0 && f.Seq%uint64(every) == 0 {
				pending = append(pending, dockEvent{Kind: "frame", AtMs: elapsed(), Frame: &f})
			}
			if err := flush(); err != nil {
				return dockSummary{}, err
			}
		}
	}

	last := p.Last()
	return dockSummary{
		Frames:          last.Seq,
		State:           last.State,
		Rotation:        last.Rotation,
		DisplayRotation: last.DisplayRotation,
		Advanced:        p.Machine().Advanced(),
	}, nil
}

func emitDockEvent(out *emitter, ev dockEvent) error {
	switch ev.Kind {
	case "transition":
		return out.emit(ev, "%6dms  %s -> %s", ev.AtMs, ev.From, ev.To)
	case "confirm":
		return out.emit(ev, "%6dms  confirm accepted=%t", ev.AtMs, *ev.Confirmed)
	case "frame":
		f := ev.Frame
		return out.emit(ev, "%6dms  #%d progress=%.3f rotation=%.2f display=%.2f window=%t state=%s",
			ev.AtMs, f.Seq, f.Progress, f.Rotation, f.DisplayRotation, f.InWindow, f.State)
	default:
		return out.emit(ev, "%6dms  %s", ev.AtMs, ev.Kind)
	}
}
