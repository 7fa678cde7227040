package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"parcelmap/internal/config"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestLayersCommand(t *testing.T) {
	out := run(t, "layers")
	for _, want := range []string{"osm", "satellite", "core_urban", "old_town", "Kakamega Layers", "LAYERS=kakamega_parcels:old_town"} {
		if !strings.Contains(out, want) {
			t.Fatalf("layers output missing %q:\n%s", want, out)
		}
	}
	// tile layers show a concrete tile under the home view
	if !strings.Contains(out, "tile.openstreetmap.org/14/") {
		t.Fatalf("no expanded osm tile url:\n%s", out)
	}
}

func TestConfigCommandRoundTrips(t *testing.T) {
	out := run(t, "config")
	cfg, err := config.Decode(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode printed config: %v\n%s", err, out)
	}
	if len(cfg.Layers) != 4 || cfg.Home.Zoom != 14 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	doc := "home:\n  zoom: 16\nlayers:\n  - id: base\n    kind: osm\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	out := run(t, "layers", "--config", path)
	if !strings.Contains(out, "base") || strings.Contains(out, "old_town") {
		t.Fatalf("layers output:\n%s", out)
	}
	if !strings.Contains(out, "/16/") {
		t.Fatalf("home zoom not applied:\n%s", out)
	}
}

func TestOpenAPICommand(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(run(t, "openapi")), &doc); err != nil {
		t.Fatal(err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/api/v1/click"]; !ok {
		t.Fatalf("paths = %v", paths)
	}

	if err := yaml.Unmarshal([]byte(run(t, "openapi", "--yaml")), &doc); err != nil {
		t.Fatal(err)
	}
}
