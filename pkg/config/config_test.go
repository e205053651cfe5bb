package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClampCandidateCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{5, 5},
		{7, 7},
		{9, 9},
		{0, 5},
		{-3, 5},
		{6, 5}, // ties snap to the smaller supported value
		{8, 7},
		{10, 9},
		{100, 9},
	}
	for _, tt := range tests {
		if got := ClampCandidateCount(tt.in); got != tt.want {
			t.Errorf("ClampCandidateCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Engine.CandidateCount != 9 {
		t.Errorf("CandidateCount = %d, want 9", cfg.Engine.CandidateCount)
	}
	if !cfg.Engine.LearningEnabled {
		t.Error("LearningEnabled = false, want true")
	}
	if cfg.Engine.AutoSubmit {
		t.Error("AutoSubmit = true, want false")
	}
	if cfg.Rank.FuzzyTonePenalty != 50 {
		t.Errorf("FuzzyTonePenalty = %v, want 50", cfg.Rank.FuzzyTonePenalty)
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Engine.CandidateCount = 7
	cfg.Engine.FuzzyTone = true
	cfg.Rank.FuzzyTonePenalty = 25
	cfg.Dict.Path = "/srv/dict/phrases.db"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Engine.CandidateCount != 7 {
		t.Errorf("CandidateCount = %d, want 7", got.Engine.CandidateCount)
	}
	if !got.Engine.FuzzyTone {
		t.Error("FuzzyTone = false, want true")
	}
	if got.Rank.FuzzyTonePenalty != 25 {
		t.Errorf("FuzzyTonePenalty = %v, want 25", got.Rank.FuzzyTonePenalty)
	}
	if got.Dict.Path != "/srv/dict/phrases.db" {
		t.Errorf("Dict.Path = %q", got.Dict.Path)
	}
}

func TestLoadConfigClampsCandidateCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	toml := "[engine]\ncandidate_count = 42\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Engine.CandidateCount != 9 {
		t.Errorf("CandidateCount = %d, want clamped to 9", got.Engine.CandidateCount)
	}
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// A bad value in one section must not discard the valid sections.
	path := filepath.Join(t.TempDir(), "config.toml")
	toml := "[engine]\n" +
		"candidate_count = 5\n" +
		"fuzzy_tone = \"definitely\"\n" + // wrong type
		"[dict]\n" +
		"path = \"custom.db\"\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Engine.CandidateCount != 5 {
		t.Errorf("CandidateCount = %d, want 5 from surviving key", got.Engine.CandidateCount)
	}
	if got.Engine.FuzzyTone {
		t.Error("FuzzyTone = true, want default false for mangled key")
	}
	if got.Dict.Path != "custom.db" {
		t.Errorf("Dict.Path = %q, want custom.db", got.Dict.Path)
	}
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zhuyinserve", "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Engine.CandidateCount != 9 {
		t.Errorf("CandidateCount = %d, want default 9", cfg.Engine.CandidateCount)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// Second init loads the file it just wrote.
	if _, err := InitConfig(path); err != nil {
		t.Fatalf("InitConfig reload: %v", err)
	}
}
