package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

var configValidate = validator.New()

// Config is the root configuration object, loaded by layering defaults,
// TOML file(s) and environment variables in that order. Command-line flags
// only choose which TOML files are read; no flag overrides a single key.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Queue     QueueConfig     `toml:"queue"`
	Filter    FilterConfig    `toml:"filter"`
	Rotation  RotationConfig  `toml:"rotation"`
	AI        AIConfig        `toml:"ai"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Claude    ClaudeConfig    `toml:"claude"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	WorkerCount int `toml:"worker_count"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type QueueTimeouts struct {
	Job     time.Duration `toml:"job"`
	Scrape  time.Duration `toml:"scrape"`
	Company time.Duration `toml:"company"`
}

type QueueConfig struct {
	MaxRetries        int           `toml:"max_retries"`
	StaleClaimSeconds int           `toml:"stale_claim_seconds"`
	PollInterval      time.Duration `toml:"poll_interval"`
	Timeouts          QueueTimeouts `toml:"timeouts"`
}

type FilterConfig struct {
	StrikeThreshold  int           `toml:"strike_threshold" validate:"gt=0"`
	TechRanks        []string      `toml:"tech_ranks"`
	StopList         []string      `toml:"stop_list"`
	BlockList        []string      `toml:"block_list"`
	AllowedRegions   []string      `toml:"allowed_regions"`
	PreferredRegions []string      `toml:"preferred_regions"`
	PreferredSize    [2]int        `toml:"preferred_size"`
	Weights          StrikeWeights `toml:"weights"`
}

type StrikeWeights struct {
	Location      int `toml:"location"`
	Seniority     int `toml:"seniority"`
	CompanySize   int `toml:"company_size"`
	RoleType      int `toml:"role_type"`
}

type RotationConfig struct {
	MaxConsecutiveFailures int `toml:"max_consecutive_failures" validate:"gt=0"`
	FairnessWindowDays     int `toml:"fairness_window_days"`
}

type AIThresholds struct {
	MinMatchScore int `toml:"min_match_score"`
	RescoreBand   int `toml:"rescore_band"`
}

type AIConfig struct {
	Thresholds AIThresholds `toml:"thresholds"`
}

type DaytimeHours struct {
	Start int `toml:"start"`
	End   int `toml:"end"`
}

type SchedulerConfig struct {
	Enabled       bool         `toml:"enabled"`
	CronExpr      string       `toml:"cron_expr"`
	DaytimeHours  DaytimeHours `toml:"daytime_hours"`
	Timezone      string       `toml:"timezone"`
	TargetMatches int          `toml:"target_matches"`
	MaxSources    int          `toml:"max_sources"`
}

type ClaudeConfig struct {
	APIKey    string        `toml:"api_key"`
	Model     string        `toml:"model"`
	MaxTokens int           `toml:"max_tokens"`
	Timeout   time.Duration `toml:"timeout"`
}

type GeminiConfig struct {
	APIKey       string `toml:"api_key"`
	CheapModel   string `toml:"cheap_model"`
	MediumModel  string `toml:"medium_model"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`
	Output     []string `toml:"output"`
	FilePath   string   `toml:"file_path"`
	TimeFormat string   `toml:"time_format"`
}

// NewDefaultConfig returns the built-in defaults, overridden by later layers.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{WorkerCount: 4},
		Storage: StorageConfig{
			Badger: BadgerConfig{Path: "./data/jobworker.db"},
		},
		Queue: QueueConfig{
			MaxRetries:        3,
			StaleClaimSeconds: 600,
			PollInterval:      2 * time.Second,
			Timeouts: QueueTimeouts{
				Job:     5 * time.Minute,
				Scrape:  10 * time.Minute,
				Company: 3 * time.Minute,
			},
		},
		Filter: FilterConfig{
			StrikeThreshold: 5,
			PreferredSize:   [2]int{1, 5000},
			Weights: StrikeWeights{
				Location:    3,
				Seniority:   2,
				CompanySize: 1,
				RoleType:    2,
			},
		},
		Rotation: RotationConfig{
			MaxConsecutiveFailures: 5,
			FairnessWindowDays:     30,
		},
		AI: AIConfig{
			Thresholds: AIThresholds{MinMatchScore: 80, RescoreBand: 10},
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			CronExpr:      "*/5 * * * *",
			DaytimeHours:  DaytimeHours{Start: 7, End: 20},
			Timezone:      "UTC",
			TargetMatches: 10,
			MaxSources:    5,
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 4096,
			Timeout:   60 * time.Second,
		},
		Gemini: GeminiConfig{
			CheapModel:  "gemini-2.5-flash-lite",
			MediumModel: "gemini-2.5-flash",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"console"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// LoadFromFiles unmarshals each path in order on top of cfg; later files
// override fields set by earlier ones.
func (c *Config) LoadFromFiles(paths []string) error {
	for _, p := range paths {
		if err := c.LoadFromFile(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides scans JOBWORKER_* environment variables and overrides
// the matching config field. Only a fixed, documented set of keys is
// recognized; unrecognized JOBWORKER_* variables are ignored rather than
// rejected, since env is the lowest-friction override surface and a typo
// there shouldn't abort startup.
func (c *Config) ApplyEnvOverrides() {
	setString := func(env string, dst *string) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(env string, dst *int) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(env string, dst *bool) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	setDuration := func(env string, dst *time.Duration) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	setStrings := func(env string, dst *[]string) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			parts := strings.Split(v, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			*dst = parts
		}
	}

	setString("JOBWORKER_STORAGE_BADGER_PATH", &c.Storage.Badger.Path)
	setBool("JOBWORKER_STORAGE_BADGER_RESET_ON_STARTUP", &c.Storage.Badger.ResetOnStartup)

	setInt("JOBWORKER_QUEUE_MAX_RETRIES", &c.Queue.MaxRetries)
	setInt("JOBWORKER_QUEUE_STALE_CLAIM_SECONDS", &c.Queue.StaleClaimSeconds)
	setDuration("JOBWORKER_QUEUE_POLL_INTERVAL", &c.Queue.PollInterval)
	setDuration("JOBWORKER_QUEUE_TIMEOUTS_JOB", &c.Queue.Timeouts.Job)
	setDuration("JOBWORKER_QUEUE_TIMEOUTS_SCRAPE", &c.Queue.Timeouts.Scrape)
	setDuration("JOBWORKER_QUEUE_TIMEOUTS_COMPANY", &c.Queue.Timeouts.Company)

	setInt("JOBWORKER_FILTER_STRIKE_THRESHOLD", &c.Filter.StrikeThreshold)
	setStrings("JOBWORKER_FILTER_TECH_RANKS", &c.Filter.TechRanks)
	setStrings("JOBWORKER_FILTER_STOP_LIST", &c.Filter.StopList)
	setStrings("JOBWORKER_FILTER_BLOCK_LIST", &c.Filter.BlockList)
	setStrings("JOBWORKER_FILTER_ALLOWED_REGIONS", &c.Filter.AllowedRegions)
	setStrings("JOBWORKER_FILTER_PREFERRED_REGIONS", &c.Filter.PreferredRegions)

	setInt("JOBWORKER_ROTATION_MAX_CONSECUTIVE_FAILURES", &c.Rotation.MaxConsecutiveFailures)
	setInt("JOBWORKER_ROTATION_FAIRNESS_WINDOW_DAYS", &c.Rotation.FairnessWindowDays)

	setInt("JOBWORKER_AI_THRESHOLDS_MIN_MATCH_SCORE", &c.AI.Thresholds.MinMatchScore)
	setInt("JOBWORKER_AI_THRESHOLDS_RESCORE_BAND", &c.AI.Thresholds.RescoreBand)

	setBool("JOBWORKER_SCHEDULER_ENABLED", &c.Scheduler.Enabled)
	setString("JOBWORKER_SCHEDULER_CRON_EXPR", &c.Scheduler.CronExpr)
	setInt("JOBWORKER_SCHEDULER_DAYTIME_HOURS_START", &c.Scheduler.DaytimeHours.Start)
	setInt("JOBWORKER_SCHEDULER_DAYTIME_HOURS_END", &c.Scheduler.DaytimeHours.End)
	setString("JOBWORKER_SCHEDULER_TIMEZONE", &c.Scheduler.Timezone)
	setInt("JOBWORKER_SCHEDULER_TARGET_MATCHES", &c.Scheduler.TargetMatches)
	setInt("JOBWORKER_SCHEDULER_MAX_SOURCES", &c.Scheduler.MaxSources)

	setString("JOBWORKER_LOGGING_LEVEL", &c.Logging.Level)
	setStrings("JOBWORKER_LOGGING_OUTPUT", &c.Logging.Output)
	setString("JOBWORKER_LOGGING_FILE_PATH", &c.Logging.FilePath)

	// API keys resolve env-first regardless of ResolveClaudeAPIKey and
	// ResolveGeminiAPIKey below, since
	// that is the priority every other override in this file follows too.
	setString("ANTHROPIC_API_KEY", &c.Claude.APIKey)
	setString("GEMINI_API_KEY", &c.Gemini.APIKey)
}

// ResolveClaudeAPIKey returns the Claude API key, preferring the environment
// variable over whatever was loaded from file/TOML.
func (c *Config) ResolveClaudeAPIKey() string {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		return v
	}
	return c.Claude.APIKey
}

func (c *Config) ResolveGeminiAPIKey() string {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return c.Gemini.APIKey
}

// ValidateJobSchedule checks that the expression parses under the standard
// 5-field cron spec and rejects a "*/N" minute field with N below 5. Other
// minute-field forms (such as "*" or a list) are not checked against the
// 5-minute minimum.
func ValidateJobSchedule(expr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	fields := strings.Fields(expr)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "*/") {
		n, err := strconv.Atoi(strings.TrimPrefix(fields[0], "*/"))
		if err == nil && n < 5 {
			return fmt.Errorf("cron expression %q fires more often than the 5 minute minimum", expr)
		}
	}
	return nil
}

// Validate checks required fields are set after all override layers apply.
// Tag-expressible constraints run through go-playground/validator; the cron
// expression and timezone checks below can't be expressed as struct tags
// and stay hand-rolled.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return err
	}
	if c.Scheduler.Enabled {
		if err := ValidateJobSchedule(c.Scheduler.CronExpr); err != nil {
			return err
		}
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("invalid scheduler.timezone %q: %w", c.Scheduler.Timezone, err)
		}
	}
	return nil
}
