// Package config provides configuration file support for rcr.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reviewloop/rcr/internal/git"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = ".rcr.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("5m", "300s") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the rcr configuration file.
type Config struct {
	Base        *string      `yaml:"base"`
	Timeout     *Duration    `yaml:"timeout"`
	Source      *string      `yaml:"source"`
	Repo        *string      `yaml:"repo"`
	Concurrency *int         `yaml:"concurrency"`
	MaxComments *int         `yaml:"max_comments"`
	HistoryPath *string      `yaml:"history_path"`
	Verify      VerifyConfig `yaml:"verify"`
	SkipAuthors []string     `yaml:"skip_authors"`
}

// VerifyConfig holds the lint and test collaborator command lines.
type VerifyConfig struct {
	LintCommand []string `yaml:"lint_command"`
	TestCommand []string `yaml:"test_command"`
}

// LoadWithWarnings reads .rcr.yaml from the git repository root and returns warnings.
// Returns an empty config (not error) if the file doesn't exist.
// Returns an error if the file exists but is invalid YAML.
func LoadWithWarnings() (*LoadResult, error) {
	repoRoot, err := git.GetRoot()
	if err != nil {
		// Not in a git repo - return empty config
		return &LoadResult{Config: &Config{}}, nil
	}

	configPath := filepath.Join(repoRoot, ConfigFileName)
	return LoadFromPathWithWarnings(configPath)
}

// LoadFromDirWithWarnings reads .rcr.yaml from the specified directory and returns warnings.
func LoadFromDirWithWarnings(dir string) (*LoadResult, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFromPathWithWarnings(configPath)
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Warnings []string
}

// LoadFromPathWithWarnings reads a config file and returns warnings for unknown keys.
// Returns an empty config (not error) if the file doesn't exist.
// Returns an error if the file exists but is invalid YAML or fails validation.
func LoadFromPathWithWarnings(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Check for unknown keys using strict mode
	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	// Validate config values
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings}, nil
}

// SupportedSources are the valid values for the source setting.
var SupportedSources = []string{"cli", "api"}

// knownTopLevelKeys are the valid top-level keys in the config file.
var knownTopLevelKeys = []string{"base", "timeout", "source", "repo", "concurrency", "max_comments", "history_path", "verify", "skip_authors"}

// knownVerifyKeys are the valid keys under the "verify" section.
var knownVerifyKeys = []string{"lint_command", "test_command"}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var warnings []string

	// Parse into a generic map to inspect keys
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// If we can't parse, let the main parser handle the error
		return nil
	}

	// Check top-level keys
	for key := range raw {
		if !slices.Contains(knownTopLevelKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownTopLevelKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	// Check keys under "verify" section
	if verify, ok := raw["verify"].(map[string]any); ok {
		for key := range verify {
			if !slices.Contains(knownVerifyKeys, key) {
				warning := fmt.Sprintf("unknown key %q in verify section of %s", key, ConfigFileName)
				if suggestion := findSimilar(key, knownVerifyKeys); suggestion != "" {
					warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
				}
				warnings = append(warnings, warning)
			}
		}
	}

	return warnings
}

// findSimilar finds the most similar string from candidates using Levenshtein distance.
// Returns empty string if no candidate is similar enough (threshold: 3 edits).
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		dist := levenshtein(input, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Create matrix
	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// MergeSkipAuthors combines config file skip authors with CLI values.
// CLI authors are appended after config authors (both are applied).
func MergeSkipAuthors(cfg *Config, cliAuthors []string) []string {
	if cfg == nil {
		return cliAuthors
	}
	return append(cfg.SkipAuthors, cliAuthors...)
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Concurrency != nil && *c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", *c.Concurrency)
	}
	if c.MaxComments != nil && *c.MaxComments < 0 {
		return fmt.Errorf("max_comments must be >= 0, got %d", *c.MaxComments)
	}
	if c.Timeout != nil && *c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", time.Duration(*c.Timeout))
	}
	if c.Source != nil && !slices.Contains(SupportedSources, *c.Source) {
		return fmt.Errorf("source must be one of %v, got %q", SupportedSources, *c.Source)
	}
	if c.Repo != nil && !strings.Contains(*c.Repo, "/") {
		return fmt.Errorf("repo must be owner/name, got %q", *c.Repo)
	}
	return nil
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	Base:        "main",
	Timeout:     5 * time.Minute,
	Source:      "cli",
	Concurrency: 0, // means "built-in classifier default"
	MaxComments: 0, // means "no cap"
	LintCommand: []string{"gofmt", "-l"},
	TestCommand: []string{"go", "test", "./..."},
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Base        string
	Timeout     time.Duration
	Source      string
	Repo        string
	Concurrency int
	MaxComments int
	HistoryPath string
	LintCommand []string
	TestCommand []string
	SkipAuthors []string
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	BaseSet        bool
	TimeoutSet     bool
	SourceSet      bool
	RepoSet        bool
	ConcurrencySet bool
	MaxCommentsSet bool
	HistoryPathSet bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	Base           string
	BaseSet        bool
	Timeout        time.Duration
	TimeoutSet     bool
	Source         string
	SourceSet      bool
	Repo           string
	RepoSet        bool
	Concurrency    int
	ConcurrencySet bool
	MaxComments    int
	MaxCommentsSet bool
	HistoryPath    string
	HistoryPathSet bool
}

// LoadEnvState reads environment variables and returns their state.
func LoadEnvState() EnvState {
	var state EnvState

	if v := os.Getenv("RCR_BASE_REF"); v != "" {
		state.Base = v
		state.BaseSet = true
	}
	if v := os.Getenv("RCR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			state.Timeout = d
			state.TimeoutSet = true
		} else if secs, err := strconv.Atoi(v); err == nil {
			state.Timeout = time.Duration(secs) * time.Second
			state.TimeoutSet = true
		}
	}
	if v := os.Getenv("RCR_SOURCE"); v != "" {
		state.Source = v
		state.SourceSet = true
	}
	if v := os.Getenv("RCR_REPO"); v != "" {
		state.Repo = v
		state.RepoSet = true
	}
	if v := os.Getenv("RCR_CONCURRENCY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.Concurrency = i
			state.ConcurrencySet = true
		}
	}
	if v := os.Getenv("RCR_MAX_COMMENTS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.MaxComments = i
			state.MaxCommentsSet = true
		}
	}
	if v := os.Getenv("RCR_HISTORY_PATH"); v != "" {
		state.HistoryPath = v
		state.HistoryPathSet = true
	}

	return state
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	// Apply config file values (if set)
	if cfg != nil {
		if cfg.Base != nil {
			result.Base = *cfg.Base
		}
		if cfg.Timeout != nil {
			result.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.Source != nil {
			result.Source = *cfg.Source
		}
		if cfg.Repo != nil {
			result.Repo = *cfg.Repo
		}
		if cfg.Concurrency != nil {
			result.Concurrency = *cfg.Concurrency
		}
		if cfg.MaxComments != nil {
			result.MaxComments = *cfg.MaxComments
		}
		if cfg.HistoryPath != nil {
			result.HistoryPath = *cfg.HistoryPath
		}
		if cfg.Verify.LintCommand != nil {
			result.LintCommand = cfg.Verify.LintCommand
		}
		if cfg.Verify.TestCommand != nil {
			result.TestCommand = cfg.Verify.TestCommand
		}
		if cfg.SkipAuthors != nil {
			result.SkipAuthors = cfg.SkipAuthors
		}
	}

	// Apply env var values (if set)
	if envState.BaseSet {
		result.Base = envState.Base
	}
	if envState.TimeoutSet {
		result.Timeout = envState.Timeout
	}
	if envState.SourceSet {
		result.Source = envState.Source
	}
	if envState.RepoSet {
		result.Repo = envState.Repo
	}
	if envState.ConcurrencySet {
		result.Concurrency = envState.Concurrency
	}
	if envState.MaxCommentsSet {
		result.MaxComments = envState.MaxComments
	}
	if envState.HistoryPathSet {
		result.HistoryPath = envState.HistoryPath
	}

	// Apply flag values (if explicitly set)
	if flagState.BaseSet {
		result.Base = flagValues.Base
	}
	if flagState.TimeoutSet {
		result.Timeout = flagValues.Timeout
	}
	if flagState.SourceSet {
		result.Source = flagValues.Source
	}
	if flagState.RepoSet {
		result.Repo = flagValues.Repo
	}
	if flagState.ConcurrencySet {
		result.Concurrency = flagValues.Concurrency
	}
	if flagState.MaxCommentsSet {
		result.MaxComments = flagValues.MaxComments
	}
	if flagState.HistoryPathSet {
		result.HistoryPath = flagValues.HistoryPath
	}

	return result
}
