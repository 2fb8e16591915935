package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/endurance/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "endurance",
		Short: "Docking alignment pipeline and relativistic clock simulator",
		Long: `endurance hosts the scroll-driven docking alignment widget and the
gravity-driven dual-clock simulator behind a JSON API, and offers offline
tools to replay, simulate and plot both.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Tuning file (.json, .yaml or .yml); built-in defaults when empty")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON lines")

	rootCmd.AddCommand(
		newServeCmd(),
		newDockCmd(),
		newSimulateCmd(),
		newPlotCmd(),
		newCtlCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadTuning reads --config, falling back to the built-in defaults.
func loadTuning(cmd *cobra.Command) (*config.TuningConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	cfg, err := config.LoadTuningConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load tuning %s: %w", path, err)
	}
	return cfg, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// emitter writes either JSON lines or formatted text.
type emitter struct {
	w    io.Writer
	json bool
	enc  *json.Encoder
}

func newEmitter(cmd *cobra.Command) *emitter {
	w := cmd.OutOrStdout()
	return &emitter{w: w, json: jsonOutput(cmd), enc: json.NewEncoder(w)}
}

func (e *emitter) emit(v interface{}, format string, args ...interface{}) error {
	if e.json {
		return e.enc.Encode(v)
	}
	_, err := fmt.Fprintf(e.w, format+"\n", args...)
	return err
}
