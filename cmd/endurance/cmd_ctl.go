package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/endurance/internal/api"
	"github.com/banshee-data/endurance/internal/httputil"
	"github.com/banshee-data/endurance/internal/relativity"
)

// newClient is swapped by tests to talk to an in-process server.
var newClient = func(addr string) *api.Client {
	return api.NewClient(addr, httputil.NewStandardClient(5*time.Second))
}

func newCtlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Control a running endurance server",
	}
	cmd.PersistentFlags().String("addr", "http://localhost:8080", "Server base URL")

	client := func(cmd *cobra.Command) *api.Client {
		addr, _ := cmd.Flags().GetString("addr")
		return newClient(addr)
	}
	printReadout := func(cmd *cobra.Command, r relativity.Readout) error {
		return newEmitter(cmd).emit(r, "running=%t ship=%s earth=%s %s factor=%s gravity=%s",
			r.Running, r.Ship, r.Earth.Value, r.Earth.Unit, r.FactorText, r.GravityText)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the docking widget and simulator state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c := client(cmd)
				st, err := c.Docking(cmd.Context())
				if err != nil {
					return err
				}
				if err := newEmitter(cmd).emit(st, "docking state=%s rotation=%.2f display=%.2f advanced=%t",
					st.Frame.State, st.Frame.Rotation, st.Frame.DisplayRotation, st.Advanced); err != nil {
					return err
				}
				r, err := c.Relativity(cmd.Context())
				if err != nil {
					return err
				}
				return printReadout(cmd, r)
			},
		},
		&cobra.Command{
			Use:   "progress <value>",
			Short: "Set the scroll progress (0..1)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid progress %q", args[0])
				}
				stored, err := client(cmd).SetProgress(cmd.Context(), v)
				if err != nil {
					return err
				}
				return newEmitter(cmd).emit(map[string]float64{"progress": stored}, "progress=%.3f", stored)
			},
		},
		&cobra.Command{
			Use:   "confirm",
			Short: "Press the confirm control",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := client(cmd).Confirm(cmd.Context())
				if err != nil {
					return err
				}
				return newEmitter(cmd).emit(resp, "confirmed=%t state=%s", resp.Confirmed, resp.Frame.State)
			},
		},
		&cobra.Command{
			Use:   "gravity <value>",
			Short: "Move the gravity slider (100..200)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				g, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid gravity %q", args[0])
				}
				r, err := client(cmd).SetGravity(cmd.Context(), g)
				if err != nil {
					return err
				}
				return printReadout(cmd, r)
			},
		},
	)

	for _, action := range []string{"pause", "resume", "toggle", "reset"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("Send %s to the simulator", action),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := client(cmd).RunState(cmd.Context(), action)
				if err != nil {
					return err
				}
				return printReadout(cmd, r)
			},
		})
	}
	return cmd
}
