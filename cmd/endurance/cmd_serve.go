package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/endurance/internal/api"
	"github.com/banshee-data/endurance/internal/config"
	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/journal"
	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/relativity"
	"github.com/banshee-data/endurance/internal/timeutil"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the docking widget and simulator behind the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuning, err := loadTuning(cmd)
			if err != nil {
				return err
			}
			listen, _ := cmd.Flags().GetString("listen")
			journalPath, _ := cmd.Flags().GetString("journal")
			admin, _ := cmd.Flags().GetBool("admin")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, tuning, listen, journalPath, admin)
		},
	}
	cmd.Flags().String("listen", ":8080", "Listen address")
	cmd.Flags().String("journal", "endurance.db", "Journal sqlite path; empty disables journalling")
	cmd.Flags().Bool("admin", false, "Mount the /debug/ admin routes (tailsql over the journal)")
	return cmd
}

// buildServer assembles the hosted components from tuning on clock.
func buildServer(tuning *config.TuningConfig, clock timeutil.Clock) *api.Server {
	p := docking.NewPipeline(docking.ConfigFromTuning(tuning), clock)
	sim := relativity.NewSimulator(relativity.ConfigFromTuning(tuning), clock, nil)
	return api.NewServer(p, &docking.ProgressCell{}, sim, clock)
}

func runServe(ctx context.Context, tuning *config.TuningConfig, listen, journalPath string, admin bool) error {
	srv := buildServer(tuning, timeutil.RealClock{})
	mux := http.NewServeMux()

	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		if err := srv.AttachJournal(j, tuning.GetJournalReadoutEvery()); err != nil {
			return err
		}
		if admin {
			if err := j.AttachAdminRoutes(mux); err != nil {
				return err
			}
		}
		monitoring.Logf("journal: writing to %s", journalPath)
	}

	return srv.ListenAndServe(ctx, listen, mux)
}
