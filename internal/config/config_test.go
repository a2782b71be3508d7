package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Clean.RowThreshold != 0.5 || cfg.Clean.ColumnThreshold != 0.5 {
		t.Errorf("unexpected default thresholds: %+v", cfg.Clean)
	}
	if cfg.Clean.Neighbors != 2 {
		t.Errorf("expected 2 default neighbors, got %d", cfg.Clean.Neighbors)
	}
	if cfg.Output.ChartDir != "charts" || cfg.Output.ReportPath != "report.html" {
		t.Errorf("unexpected default outputs: %+v", cfg.Output)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CLUSTERLAB_ROW_THRESHOLD", "0.25")
	t.Setenv("CLUSTERLAB_NEIGHBORS", "5")
	t.Setenv("CLUSTERLAB_KEY_FIELD", "ISO3")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Clean.RowThreshold != 0.25 {
		t.Errorf("expected 0.25, got %v", cfg.Clean.RowThreshold)
	}
	if cfg.Clean.Neighbors != 5 {
		t.Errorf("expected 5 neighbors, got %d", cfg.Clean.Neighbors)
	}
	if cfg.Input.KeyField != "ISO3" {
		t.Errorf("expected ISO3, got %q", cfg.Input.KeyField)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "threshold above one", key: "CLUSTERLAB_ROW_THRESHOLD", value: "1.5"},
		{name: "negative threshold", key: "CLUSTERLAB_COL_THRESHOLD", value: "-0.1"},
		{name: "zero neighbors", key: "CLUSTERLAB_NEIGHBORS", value: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestUnparseableValuesFallBack(t *testing.T) {
	t.Setenv("CLUSTERLAB_NEIGHBORS", "many")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Clean.Neighbors != 2 {
		t.Errorf("unparseable value should keep the default, got %d", cfg.Clean.Neighbors)
	}
}
