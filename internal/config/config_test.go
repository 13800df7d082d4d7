package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DHISYNC_PATH", dir)
	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return cfg
}

func TestResolveUsesEnvVar(t *testing.T) {
	t.Setenv("DHISYNC_PATH", "/tmp/custom-dhisync")

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Dir != "/tmp/custom-dhisync" {
		t.Errorf("Dir = %q, want /tmp/custom-dhisync", cfg.Dir)
	}
	if !cfg.EnvVarSet {
		t.Error("EnvVarSet = false, want true")
	}
	if cfg.DBPath != filepath.Join("/tmp/custom-dhisync", "dhisync.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestResolveDefaultsToCwd(t *testing.T) {
	t.Setenv("DHISYNC_PATH", "")

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	cwd, _ := os.Getwd()
	if cfg.Dir != filepath.Join(cwd, ".dhisync") {
		t.Errorf("Dir = %q, want %q", cfg.Dir, filepath.Join(cwd, ".dhisync"))
	}
	if cfg.EnvVarSet {
		t.Error("EnvVarSet = true, want false")
	}
}

func TestExists(t *testing.T) {
	cfg := testConfig(t)

	ok, err := cfg.Exists()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Exists = true before database is created")
	}

	if err := os.WriteFile(cfg.DBPath, []byte{}, 0o644); err != nil {
		t.Fatalf("creating db file: %v", err)
	}
	ok, err = cfg.Exists()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("Exists = false after database is created")
	}
}

func TestLoadReportNames(t *testing.T) {
	cfg := testConfig(t)

	content := "DailySummary\n\n# internal, not routable\nVitalsReport\n  PatientGrid  \n"
	if err := os.WriteFile(cfg.ReportsPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("writing report list: %v", err)
	}

	names, err := cfg.LoadReportNames()
	if err != nil {
		t.Fatalf("LoadReportNames failed: %v", err)
	}
	want := []string{"DailySummary", "VitalsReport", "PatientGrid"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLoadReportNamesMissingFile(t *testing.T) {
	cfg := testConfig(t)

	names, err := cfg.LoadReportNames()
	if err != nil {
		t.Fatalf("LoadReportNames failed: %v", err)
	}
	if names != nil {
		t.Errorf("got %v, want nil for missing file", names)
	}
}

func TestLoadSchemaMissingFile(t *testing.T) {
	cfg := testConfig(t)

	if got := cfg.LoadSchema(); got != "" {
		t.Errorf("LoadSchema = %q, want empty for missing file", got)
	}
}

func TestLoadMapping(t *testing.T) {
	cfg := testConfig(t)

	content := `org_unit: OU12345
reports:
  DailySummary:
    mappings:
      - source_field: Total_Patients
        export_field: DE_TOTAL
        category_code: COC1
      - source_field: New_Registrations
        export_field: DE_NEW
        row_index: 0
`
	if err := os.WriteFile(cfg.MappingPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("writing mapping: %v", err)
	}

	catalog, err := cfg.LoadMapping()
	if err != nil {
		t.Fatalf("LoadMapping failed: %v", err)
	}
	if catalog.OrgUnit != "OU12345" {
		t.Errorf("OrgUnit = %q, want OU12345", catalog.OrgUnit)
	}

	rules := catalog.RulesFor("DailySummary")
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].SourceField != "Total_Patients" || rules[0].CategoryCode != "COC1" {
		t.Errorf("rules[0] = %+v", rules[0])
	}
	if rules[1].RowIndex == nil || *rules[1].RowIndex != 0 {
		t.Errorf("rules[1].RowIndex = %v, want 0", rules[1].RowIndex)
	}
	if catalog.Reports["DailySummary"].Name != "DailySummary" {
		t.Errorf("report name not backfilled: %q", catalog.Reports["DailySummary"].Name)
	}
}

func TestLoadMappingRejectsInvalidRule(t *testing.T) {
	cfg := testConfig(t)

	content := `org_unit: OU12345
reports:
  Broken:
    mappings:
      - export_field: DE_ONLY
`
	if err := os.WriteFile(cfg.MappingPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("writing mapping: %v", err)
	}

	if _, err := cfg.LoadMapping(); err == nil {
		t.Error("expected error for rule missing source_field")
	}
}

func TestLoadMappingMissingFile(t *testing.T) {
	cfg := testConfig(t)

	catalog, err := cfg.LoadMapping()
	if err != nil {
		t.Fatalf("LoadMapping failed: %v", err)
	}
	if rules := catalog.RulesFor("Anything"); rules != nil {
		t.Errorf("got rules %v from empty catalog", rules)
	}
}
