// Package runcfg loads and persists dataset run configuration files.
package runcfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"

	ringdataset "github.com/alonzanbar/ring-dataset-gen"
)

// Load reads a JSON configuration file and merges it over the built-in
// defaults. Keys absent from the file keep their default values; unknown
// keys are rejected so typos fail loudly.
func Load(path string) (ringdataset.DatasetConfig, error) {
	cfg := ringdataset.DefaultDatasetConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return cfg, fmt.Errorf("building config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("applying config file %s: %w", path, err)
	}
	return cfg, nil
}

// runRecord is the reproducibility snapshot written next to a generated
// dataset. Feeding it back through Load reproduces the run.
type runRecord struct {
	GeneratedAt string                    `json:"generated_at"`
	Seed        *int64                    `json:"seed"`
	ObjectName  string                    `json:"object_name"`
	Config      ringdataset.DatasetConfig `json:"config"`
}

// Write persists the effective configuration of a run to dir/run_config.json.
func Write(dir string, cfg ringdataset.DatasetConfig) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	record := runRecord{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Seed:        cfg.Seed,
		ObjectName:  cfg.ObjectName,
		Config:      cfg,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run config: %w", err)
	}
	path := filepath.Join(dir, "run_config.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
