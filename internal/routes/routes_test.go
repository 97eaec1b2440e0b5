package routes

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const routerSource = `
import { Route, Switch } from "react-router-dom";

export default function Router() {
  return (
    <Switch>
      <Route exact path="/" component={Home} />
      <Route path="/app/settings" component={Settings} />
      <Route PATH="/about" component={About} />
      <Route path="/app/settings" component={Duplicate} />
      <Route path='/single-quoted' component={Ignored} />
    </Switch>
  );
}
`

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "two routes",
			src:  `<Route path="/a" /><Route path="/b" />`,
			want: []string{"/a", "/b"},
		},
		{
			name: "no matches",
			src:  "export default null;",
			want: []string{},
		},
		{
			name: "empty value",
			src:  `<Route path="" />`,
			want: []string{""},
		},
		{
			name: "router file",
			src:  routerSource,
			want: []string{"/", "/app/settings", "/about", "/app/settings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.src)
			if got == nil {
				t.Fatal("Extract returned nil, want non-nil slice")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "Router.tsx")
	if err := os.WriteFile(p, []byte(routerSource), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := Load(p, slog.Default())
	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}
	if !r.Contains("/app/settings") {
		t.Error("expected /app/settings")
	}
	if r.Contains("/single-quoted") {
		t.Error("single-quoted attribute should not match")
	}
}

func TestLoadMissingSource(t *testing.T) {
	r := Load(filepath.Join(t.TempDir(), "absent.tsx"), slog.Default())
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
	if r.Contains("/") {
		t.Error("empty registry should contain nothing")
	}
}

func TestPathsIsCopy(t *testing.T) {
	r := New([]string{"/a", "/b"})
	p := r.Paths()
	p[0] = "/mutated"
	if r.Paths()[0] != "/a" {
		t.Error("Paths exposed internal state")
	}
}
