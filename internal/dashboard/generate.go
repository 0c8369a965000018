// Package dashboard renders Grafana dashboards over the GreptimeDB alert
// and state tables.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"wildfire-sim/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

// Render parses the dashboard templates and writes rendered dashboards to
// outDir. GREPTIMEDB_DATASOURCE_UID must name the Grafana data source.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
		"alertTable": func() string { return telemetry.AlertTableName },
		"stateTable": func() string { return telemetry.StateTableName },
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, entry := range names {
		name := entry.Name()
		t, err := template.New(name).Funcs(funcMap).ParseFS(templates, "templates/"+name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, nil); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
