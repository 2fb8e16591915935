package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/fsutil"
	"github.com/banshee-data/endurance/internal/report"
	"github.com/banshee-data/endurance/internal/security"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Write PNG plots of the dilation curve and the spring response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuning, err := loadTuning(cmd)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("out")
			if err := security.ValidateOutputPath(dir); err != nil {
				return fmt.Errorf("invalid --out: %w", err)
			}

			paths, err := report.SavePlots(fsutil.OSFileSystem{}, dir, docking.ConfigFromTuning(tuning))
			if err != nil {
				return err
			}
			e := newEmitter(cmd)
			for _, p := range paths {
				if err := e.emit(map[string]string{"path": p}, "wrote %s", p); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("out", "plots", "Output directory, under the working or temp directory")
	return cmd
}
