/*
Package config manages TOML config for the zhuyin engine and server.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/HiDomesticCat/zhuyinserve/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Rank     RankConfig     `toml:"rank"`
	Dict     DictConfig     `toml:"dict"`
	Learning LearningConfig `toml:"learning"`
}

// EngineConfig holds per-session input options.
type EngineConfig struct {
	CandidateCount  int  `toml:"candidate_count"` // 5, 7 or 9
	LearningEnabled bool `toml:"learning_enabled"`
	AutoSubmit      bool `toml:"auto_submit"`
	FullWidthPunct  bool `toml:"full_width_punctuation"`
	FuzzyTone       bool `toml:"fuzzy_tone"`
}

// RankConfig holds ranking tunables.
type RankConfig struct {
	// FuzzyTonePenalty keeps exact-tone matches ahead of tone-insensitive
	// ones at equal base frequency. Deliberately a tunable, not a fixed
	// constant.
	FuzzyTonePenalty float64 `toml:"fuzzy_tone_penalty"`
	SelectWeight     float64 `toml:"select_weight"`
	RecencyWeight    float64 `toml:"recency_weight"`
}

// DictConfig points at the read-only dictionary artifact.
type DictConfig struct {
	Path string `toml:"path"`
}

// LearningConfig points at the writable per-user learning directory.
// An empty Dir resolves to [UserConfigDir]/zhuyinserve/learning.
type LearningConfig struct {
	Dir string `toml:"dir"`
}

// candidateCounts are the supported per-query candidate limits.
var candidateCounts = []int{5, 7, 9}

// ClampCandidateCount snaps an arbitrary value onto the nearest
// supported candidate count.
func ClampCandidateCount(n int) int {
	best := candidateCounts[0]
	for _, c := range candidateCounts {
		if abs(n-c) < abs(n-best) {
			best = c
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/zhuyinserve
// 2. Current executable dir
// 3. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "zhuyinserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// DefaultLearningDir resolves the writable per-user learning directory.
// Kept apart from the dictionary path so the dictionary can stay on
// read-only media.
func DefaultLearningDir() string {
	configDir, err := GetConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "zhuyinserve", "learning")
	}
	return filepath.Join(configDir, "learning")
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/zhuyinserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			CandidateCount:  9,
			LearningEnabled: true,
			AutoSubmit:      false,
			FullWidthPunct:  true,
			FuzzyTone:       false,
		},
		Rank: RankConfig{
			FuzzyTonePenalty: 50,
			SelectWeight:     100,
			RecencyWeight:    50,
		},
		Dict: DictConfig{
			Path: "data/phrases.db",
		},
		Learning: LearningConfig{
			Dir: "",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.Engine.CandidateCount = ClampCandidateCount(config.Engine.CandidateCount)
	return config, nil
}

// tryPartialParse attempts to parse a TOML file section by section,
// keeping whatever values survive.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if rankSection, ok := utils.ExtractSection(tempConfig, "rank"); ok {
		extractRankConfig(rankSection, &config.Rank)
	}
	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		if val, ok := utils.ExtractString(dictSection, "path"); ok {
			config.Dict.Path = val
		}
	}
	if learnSection, ok := utils.ExtractSection(tempConfig, "learning"); ok {
		if val, ok := utils.ExtractString(learnSection, "dir"); ok {
			config.Learning.Dir = val
		}
	}
	config.Engine.CandidateCount = ClampCandidateCount(config.Engine.CandidateCount)
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "candidate_count"); ok {
		engine.CandidateCount = val
	}
	if val, ok := utils.ExtractBool(data, "learning_enabled"); ok {
		engine.LearningEnabled = val
	}
	if val, ok := utils.ExtractBool(data, "auto_submit"); ok {
		engine.AutoSubmit = val
	}
	if val, ok := utils.ExtractBool(data, "full_width_punctuation"); ok {
		engine.FullWidthPunct = val
	}
	if val, ok := utils.ExtractBool(data, "fuzzy_tone"); ok {
		engine.FuzzyTone = val
	}
}

// extractRankConfig extracts ranking tunables from a map
func extractRankConfig(data map[string]any, rank *RankConfig) {
	if val, ok := utils.ExtractFloat64(data, "fuzzy_tone_penalty"); ok {
		rank.FuzzyTonePenalty = val
	}
	if val, ok := utils.ExtractFloat64(data, "select_weight"); ok {
		rank.SelectWeight = val
	}
	if val, ok := utils.ExtractFloat64(data, "recency_weight"); ok {
		rank.RecencyWeight = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
