package main

import (
	"github.com/spf13/cobra"

	"github.com/banshee-data/endurance/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newEmitter(cmd).emit(map[string]string{
				"version":    version.Version,
				"git_sha":    version.GitSHA,
				"build_time": version.BuildTime,
			}, "endurance version %s (commit: %s, built: %s)", version.Version, version.GitSHA, version.BuildTime)
		},
	}
}
