package main

import (
	"errors"
	"os"
	"strconv"

	"petswarm-sim/internal/config"
	"petswarm-sim/internal/sim"
)

type writerOptions struct {
	printOnly bool
	tui       bool
	logFile   string
}

// newWriters sets up the telemetry sink from flags and env vars. The cleanup
// function closes everything that was opened.
func newWriters(cfg *config.SimulationConfig, opts writerOptions) (sim.TelemetryWriter, func(), error) {
	base, err := baseWriter(cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.logFile == "" {
		return base, closer(base), nil
	}

	fw, err := sim.NewFileWriter(logPaths(opts.logFile))
	if err != nil {
		closer(base)()
		return nil, nil, err
	}
	mw := sim.NewMultiWriter(base, fw)
	return mw, closer(mw), nil
}

func logPaths(logFile string) sim.FilePaths {
	return sim.FilePaths{
		Pets:   logFile,
		Damage: logFile + ".damage",
		Swarm:  logFile + ".swarm",
		State:  logFile + ".state",
		Hatch:  logFile + ".hatch",
	}
}

// baseWriter picks the TUI, STDOUT or GreptimeDB. Without GREPTIMEDB_ENDPOINT
// it falls back to STDOUT.
func baseWriter(cfg *config.SimulationConfig, opts writerOptions) (sim.TelemetryWriter, error) {
	if opts.tui {
		if cfg == nil {
			return nil, errors.New("tui needs a simulation config")
		}
		return sim.NewTUIWriter(cfg), nil
	}
	gopts, ok, err := greptimeOptionsFromEnv()
	if err != nil {
		return nil, err
	}
	if opts.printOnly || !ok {
		return sim.NewStdoutWriter(cfg), nil
	}
	return sim.NewGreptimeDBWriter(gopts)
}

func greptimeOptionsFromEnv() (sim.GreptimeOptions, bool, error) {
	host := os.Getenv("GREPTIMEDB_ENDPOINT")
	if host == "" {
		return sim.GreptimeOptions{}, false, nil
	}
	opts := sim.GreptimeOptions{
		Host:     host,
		Database: os.Getenv("GREPTIMEDB_DATABASE"),
		Username: os.Getenv("GREPTIMEDB_USERNAME"),
		Password: os.Getenv("GREPTIMEDB_PASSWORD"),
	}
	if opts.Database == "" {
		opts.Database = "public"
	}
	if p := os.Getenv("GREPTIMEDB_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return sim.GreptimeOptions{}, false, errors.New("invalid GREPTIMEDB_PORT")
		}
		opts.Port = port
	}
	return opts, true, nil
}

func closer(w sim.TelemetryWriter) func() {
	return func() {
		if c, ok := w.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
}

// newTelemetryWriter creates the writer used by replay.
func newTelemetryWriter(cfg *config.SimulationConfig, printOnly bool) (sim.TelemetryWriter, func(), error) {
	return newWriters(cfg, writerOptions{printOnly: printOnly})
}
