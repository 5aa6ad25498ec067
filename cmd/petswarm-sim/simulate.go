package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"petswarm-sim/internal/admin"
	"petswarm-sim/internal/config"
	"petswarm-sim/internal/logging"
	"petswarm-sim/internal/scenario"
	"petswarm-sim/internal/sim"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simAdminAddr  string
	simScenario   string
	simSeed       int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time pet swarm simulator",
	Long:  "simulate runs the swarm, pickups and egg economy, emitting pet telemetry, damage, swarm events, hatches and session state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithSchema(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		tickInterval, err := envDuration("TICK_INTERVAL", simTick)
		if err != nil {
			return err
		}
		sessionID := os.Getenv("SESSION_ID")
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		script := simScenario
		if script == "" {
			script = cfg.Scenario
		}
		var sc *scenario.Scenario
		if script != "" {
			if sc, err = scenario.Resolve(script); err != nil {
				return fmt.Errorf("scenario %s: %w", script, err)
			}
		}

		writer, cleanup, err := newWriters(cfg, writerOptions{printOnly: simPrintOnly, tui: simTUI, logFile: simLogFile})
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx).With("session_id", sessionID)
		ctx = logging.NewContext(ctx, log)

		simulator, err := sim.NewSimulator(sessionID, cfg, writer, tickInterval, seededRand(simSeed), nil)
		if err != nil {
			return err
		}
		simulator.SetLogger(log)
		simulator.SetScenario(sc)
		if cs, ok := writer.(sim.CommandSink); ok {
			cs.SetCommander(simulator)
		}

		if simAdminAddr != "" {
			srv := admin.NewServer(simulator)
			go func() {
				if as, ok := writer.(sim.AdminStatusWriter); ok {
					as.SetAdminStatus(true)
					defer as.SetAdminStatus(false)
				}
				if err := srv.Start(ctx, simAdminAddr); err != nil {
					log.Error("admin server failed", "addr", simAdminAddr, "err", err)
				}
			}()
		}

		simulator.Run(ctx)
		log.Info("pet swarm simulation stopped", "coins", simulator.State().Coins)
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render telemetry in an interactive terminal UI")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "", "Path to a CUE schema overriding the embedded one")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 100*time.Millisecond, "Simulation tick interval (e.g. 50ms, 1s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export telemetry logs (JSONL); companion files get .damage, .swarm, .state, .hatch suffixes")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin UI listen address; empty disables it")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Built-in scenario name or path to a scenario YAML")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed; 0 picks one from the clock")
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func seededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
