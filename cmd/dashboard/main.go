package main

import (
	"flag"
	"log/slog"
	"os"

	"petswarm-sim/internal/dashboard"
)

func main() {
	out := flag.String("out", "build", "Directory for rendered Grafana dashboards")
	flag.Parse()
	if err := dashboard.Render(*out); err != nil {
		slog.Error("render dashboards", "err", err)
		os.Exit(1)
	}
	slog.Info("dashboards rendered", "dir", *out)
}
