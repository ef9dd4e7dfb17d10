package config

import "testing"

func TestDefaultMatchesInvertedScriptAutomationFlags(t *testing.T) {
	cfg := Default()
	if cfg.DisableStyleAutoAddClass || cfg.DisableStyleAutoAddId {
		t.Fatalf("style-side automation should be enabled by default")
	}
	if !cfg.DisableScriptAutoAddClass || !cfg.DisableScriptAutoAddId {
		t.Fatalf("script-side automation should be disabled by default")
	}
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile("/nonexistent/chtl.config.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults when config file is missing, got %+v", cfg)
	}
}

func TestApplyBlockOverridesRecognizedKeys(t *testing.T) {
	cfg := Default()
	cfg = ApplyBlock(cfg, map[string]string{
		"DISABLE_SCRIPT_AUTO_ADD_CLASS": "false",
		"INDEX_INITIAL_COUNT":           "1",
	})
	if cfg.DisableScriptAutoAddClass {
		t.Fatalf("expected DISABLE_SCRIPT_AUTO_ADD_CLASS to be overridden to false")
	}
	if cfg.IndexInitialCount != 1 {
		t.Fatalf("got IndexInitialCount %d, want 1", cfg.IndexInitialCount)
	}
}
