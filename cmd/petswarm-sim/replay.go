package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/logging"
	"petswarm-sim/internal/sim"
)

var (
	replayInput      string
	replaySpeed      float64
	replayPrintOnly  bool
	replayConfigPath string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a pet telemetry log file",
	Long:  "replay feeds pet rows from a JSONL log back into GreptimeDB or STDOUT, keeping the recorded pacing scaled by --speed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.SimulationConfig
		if replayConfigPath != "" {
			var err error
			if cfg, err = config.Load(replayConfigPath); err != nil {
				return err
			}
		}
		writer, cleanup, err := newTelemetryWriter(cfg, replayPrintOnly)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		n, err := sim.ReplayLogFile(ctx, replayInput, writer, replaySpeed)
		logging.FromContext(ctx).Info("replay finished", "input", replayInput, "rows", n)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to pet telemetry log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier; 0 replays without delay")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	replayCmd.Flags().StringVar(&replayConfigPath, "config", "", "Optional simulation config for colored output")
	_ = replayCmd.MarkFlagRequired("input")
}
