package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"petswarm-sim/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

var templateFiles = []string{
	"templates/petswarm-dashboard.json.tmpl",
	"templates/petswarm-economy.json.tmpl",
}

// Tables names the GreptimeDB tables the dashboards query.
type Tables struct {
	Pets   string
	Damage string
	Swarm  string
	State  string
	Hatch  string
}

// DefaultTables returns the table names the writers use.
func DefaultTables() Tables {
	return Tables{
		Pets:   telemetry.PetTableName,
		Damage: telemetry.DamageTableName,
		Swarm:  telemetry.SwarmTableName,
		State:  telemetry.StateTableName,
		Hatch:  telemetry.HatchTableName,
	}
}

// Render executes the embedded dashboard templates and writes the Grafana
// JSON to outDir.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	data := DefaultTables()
	for _, tplName := range templateFiles {
		t, err := template.New(filepath.Base(tplName)).Funcs(funcMap).ParseFS(templates, tplName)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(tplName), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, data); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", tplName, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
