package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cogscreen/internal/analysis"
	"cogscreen/internal/attention"
	"cogscreen/internal/memory"
	"cogscreen/internal/problem"
	"cogscreen/internal/repository"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is the prefix of environment overrides, e.g. COGSCREEN_SERVER_PORT.
const EnvPrefix = "COGSCREEN"

var current atomic.Pointer[Config]

var (
	listenersMu sync.Mutex
	listeners   []func(*Config)
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Attention AttentionConfig `mapstructure:"attention"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Problem   ProblemConfig   `mapstructure:"problem"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	SessionSecret   string        `mapstructure:"session_secret"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	AssetsDir       string        `mapstructure:"assets_dir"`
	CatalogFile     string        `mapstructure:"catalog_file"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AttentionConfig holds the target test timing.
type AttentionConfig struct {
	Trials        int           `mapstructure:"trials"`
	SpawnDelayMin time.Duration `mapstructure:"spawn_delay_min"`
	SpawnDelayMax time.Duration `mapstructure:"spawn_delay_max"`
	ExpireAfter   time.Duration `mapstructure:"expire_after"`
	MarginPercent int           `mapstructure:"margin_percent"`
}

type MemoryConfig struct {
	SequenceLength int           `mapstructure:"sequence_length"`
	RevealDuration time.Duration `mapstructure:"reveal_duration"`
}

type ProblemConfig struct {
	Patterns int `mapstructure:"patterns"`
}

// AnalysisConfig holds the simulated analyser latency and upload limits.
type AnalysisConfig struct {
	HandwritingLatency time.Duration `mapstructure:"handwriting_latency"`
	SpeechLatency      time.Duration `mapstructure:"speech_latency"`
	MaxSampleBytes     int64         `mapstructure:"max_sample_bytes"`
}

// SessionsConfig controls the anonymous subject cookie and idle eviction.
type SessionsConfig struct {
	CookieName    string        `mapstructure:"cookie_name"`
	MaxAge        time.Duration `mapstructure:"max_age"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitConfig throttles the analyser endpoints per client IP.
type RateLimitConfig struct {
	Rate  time.Duration `mapstructure:"rate"`
	Limit uint          `mapstructure:"limit"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "change-me-in-production")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.assets_dir", "assets")
	v.SetDefault("server.catalog_file", "config/assessments.yaml")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Test defaults
	v.SetDefault("attention.trials", 10)
	v.SetDefault("attention.spawn_delay_min", time.Second)
	v.SetDefault("attention.spawn_delay_max", 3*time.Second)
	v.SetDefault("attention.expire_after", 1500*time.Millisecond)
	v.SetDefault("attention.margin_percent", 10)
	v.SetDefault("memory.sequence_length", 5)
	v.SetDefault("memory.reveal_duration", 3*time.Second)
	v.SetDefault("problem.patterns", 5)
	v.SetDefault("analysis.handwriting_latency", 2500*time.Millisecond)
	v.SetDefault("analysis.speech_latency", 3*time.Second)
	v.SetDefault("analysis.max_sample_bytes", 10<<20)

	// Session defaults
	v.SetDefault("sessions.cookie_name", "cogscreen")
	v.SetDefault("sessions.max_age", 7*24*time.Hour)
	v.SetDefault("sessions.idle_timeout", 30*time.Minute)
	v.SetDefault("sessions.sweep_interval", time.Minute)

	// Rate limit defaults
	v.SetDefault("ratelimit.rate", time.Minute)
	v.SetDefault("ratelimit.limit", 5)
}

// Init loads the configuration with Viper and starts watching the file for
// changes. A reloaded file that fails validation is ignored.
func Init(projectRoot string, log *zap.Logger) (*Config, error) {
	v := newViper(projectRoot)

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}
	current.Store(conf)

	// Set up a watch for configuration changes for hot-reloading
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		next, err := decode(v)
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		current.Store(next)
		notify(next)
	})
	v.WatchConfig()

	log.Info("Configuration loaded successfully", zap.String("file", v.ConfigFileUsed()))
	return conf, nil
}

// Load reads the configuration once, without watching for changes.
func Load(projectRoot string) (*Config, error) {
	v := newViper(projectRoot)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

func newViper(projectRoot string) *viper.Viper {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Get returns the active configuration. It is nil before Init.
func Get() *Config {
	return current.Load()
}

// OnChange registers fn to run with every successfully reloaded config.
func OnChange(fn func(*Config)) {
	listenersMu.Lock()
	listeners = append(listeners, fn)
	listenersMu.Unlock()
}

func notify(c *Config) {
	listenersMu.Lock()
	fns := append([]func(*Config){}, listeners...)
	listenersMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// Validate checks the test settings and session timing.
func (c *Config) Validate() error {
	if err := c.Attention.Settings().Validate(); err != nil {
		return err
	}
	if err := c.Memory.Settings().Validate(); err != nil {
		return err
	}
	if err := c.Problem.Settings().Validate(); err != nil {
		return err
	}
	if c.Sessions.IdleTimeout <= 0 || c.Sessions.SweepInterval <= 0 {
		return errors.New("sessions.idle_timeout and sessions.sweep_interval must be positive")
	}
	if c.Analysis.MaxSampleBytes <= 0 {
		return errors.New("analysis.max_sample_bytes must be positive")
	}
	return nil
}

func (a AttentionConfig) Settings() attention.Settings {
	return attention.Settings{
		Trials:        a.Trials,
		SpawnDelayMin: a.SpawnDelayMin,
		SpawnDelayMax: a.SpawnDelayMax,
		ExpireAfter:   a.ExpireAfter,
		MarginPercent: a.MarginPercent,
	}
}

func (m MemoryConfig) Settings() memory.Settings {
	return memory.Settings{SequenceLength: m.SequenceLength, RevealDuration: m.RevealDuration}
}

func (p ProblemConfig) Settings() problem.Settings {
	return problem.Settings{Patterns: p.Patterns}
}

func (a AnalysisConfig) Settings() analysis.Settings {
	return analysis.Settings{
		HandwritingLatency: a.HandwritingLatency,
		SpeechLatency:      a.SpeechLatency,
	}
}

// StoreSettings bundles the per-subject game settings.
func (c *Config) StoreSettings() repository.Settings {
	return repository.Settings{
		Attention: c.Attention.Settings(),
		Memory:    c.Memory.Settings(),
		Problem:   c.Problem.Settings(),
	}
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
