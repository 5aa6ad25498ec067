package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	if err := Render(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")

	dir := t.TempDir()
	if err := Render(dir); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, name := range []string{"petswarm-dashboard.json", "petswarm-economy.json"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(b), "uid1") {
			t.Fatalf("%s: datasource uid not rendered", name)
		}
		var v map[string]any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatalf("%s: invalid json: %v", name, err)
		}
	}

	b, _ := os.ReadFile(filepath.Join(dir, "petswarm-economy.json"))
	if !strings.Contains(string(b), DefaultTables().Hatch) {
		t.Fatalf("hatch table not referenced")
	}
}
