// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/contract-review/internal/llm"
	"github.com/jonathan/contract-review/internal/retry"
)

// Defaults applied by MergeWithDefaults
const (
	DefaultSleepBetweenCalls = 250 * time.Millisecond
	DefaultArtifactDir       = "artifacts"
	DefaultPort              = 8080
	DefaultQueueSize         = 16
)

// ErrMissingAPIKey is returned when no Gemini API key is configured
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is required but not set")

// Duration is a time.Duration that unmarshals from "250ms"-style strings
// or from a number of seconds.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or seconds
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

func durationPtr(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// ParseDuration parses "1.5s"-style durations. A bare number is read as seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// Config is the service configuration. It can be loaded from a JSON file and
// overlaid with environment variables; empty fields take defaults.
type Config struct {
	// Model
	APIKey          string `json:"api_key,omitempty"`
	GenerationModel string `json:"generation_model,omitempty"`
	EmbeddingModel  string `json:"embedding_model,omitempty"`

	// Storage
	DatabaseURL       string `json:"database_url,omitempty"`        // reviews and artifacts
	VectorDatabaseURL string `json:"vector_database_url,omitempty"` // pgvector legal corpus
	ArtifactDir       string `json:"artifact_dir,omitempty"`
	CorpusPath        string `json:"corpus_path,omitempty"` // JSON reference entries for in-memory search

	// Pacing and retries
	// nil means unset; an explicit 0 disables pacing, retries or backoff
	SleepBetweenCalls *Duration `json:"sleep_between_calls,omitempty" validate:"omitempty,gte=0"`
	RetryAttempts     *int      `json:"retry_attempts,omitempty" validate:"omitempty,gte=0,lte=10"`
	RetryBaseDelay    *Duration `json:"retry_base_delay,omitempty" validate:"omitempty,gte=0"`

	// Server
	Port      int `json:"port,omitempty" validate:"gte=0,lte=65535"`
	QueueSize int `json:"queue_size,omitempty" validate:"gte=0"`

	Verbose bool `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv overlays environment variables on c. Unset variables leave fields untouched.
func (c *Config) FromEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("GEMINI_API_KEY", &c.APIKey)
	setString("GEMINI_MODEL", &c.GenerationModel)
	setString("GEMINI_EMBEDDING_MODEL", &c.EmbeddingModel)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("VECTOR_DATABASE_URL", &c.VectorDatabaseURL)
	setString("ARTIFACT_DIR", &c.ArtifactDir)
	setString("CORPUS_PATH", &c.CorpusPath)

	if v := os.Getenv("SLEEP_BETWEEN_CALLS"); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SLEEP_BETWEEN_CALLS: %w", err)
		}
		c.SleepBetweenCalls = durationPtr(d)
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RETRY_ATTEMPTS: %v", err)
		}
		c.RetryAttempts = &n
	}
	if v := os.Getenv("RETRY_BASE_DELAY"); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RETRY_BASE_DELAY: %w", err)
		}
		c.RetryBaseDelay = durationPtr(d)
	}
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = n
	}
	return nil
}

// Defaults returns the built-in configuration
func Defaults() Config {
	retries := retry.DefaultRetries
	return Config{
		GenerationModel:   llm.DefaultGenerationModel,
		EmbeddingModel:    llm.DefaultEmbeddingModel,
		ArtifactDir:       DefaultArtifactDir,
		SleepBetweenCalls: durationPtr(DefaultSleepBetweenCalls),
		RetryAttempts:     &retries,
		RetryBaseDelay:    durationPtr(retry.DefaultBaseDelay),
		Port:              DefaultPort,
		QueueSize:         DefaultQueueSize,
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.GenerationModel == "" {
		result.GenerationModel = defaults.GenerationModel
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.VectorDatabaseURL == "" {
		result.VectorDatabaseURL = defaults.VectorDatabaseURL
	}
	if result.ArtifactDir == "" {
		result.ArtifactDir = defaults.ArtifactDir
	}
	if result.CorpusPath == "" {
		result.CorpusPath = defaults.CorpusPath
	}

	if result.SleepBetweenCalls == nil {
		result.SleepBetweenCalls = defaults.SleepBetweenCalls
	}
	if result.RetryAttempts == nil {
		result.RetryAttempts = defaults.RetryAttempts
	}
	if result.RetryBaseDelay == nil {
		result.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.QueueSize == 0 {
		result.QueueSize = defaults.QueueSize
	}

	return result
}

// Load reads the optional config file, overlays the environment and fills defaults.
func Load(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.FromEnv(); err != nil {
		return Config{}, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// ValidationError lists the invalid configuration fields
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: invalid %s", strings.Join(e.Fields, ", "))
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
// Required fields (such as the API key) are checked by the commands that need them.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
			}
			return &ValidationError{Fields: fields}
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.CorpusPath != "" {
		if _, err := os.Stat(c.CorpusPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: corpus file not found: %s", c.CorpusPath)
		}
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no API key is configured
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Retries returns the configured retry count, or the default when unset
func (c *Config) Retries() int {
	if c.RetryAttempts == nil {
		return retry.DefaultRetries
	}
	return *c.RetryAttempts
}

// PaceDelay returns the wait after every model call, or the default when unset
func (c *Config) PaceDelay() time.Duration {
	if c.SleepBetweenCalls == nil {
		return DefaultSleepBetweenCalls
	}
	return c.SleepBetweenCalls.Std()
}

// BaseDelay returns the backoff unit, or the default when unset
func (c *Config) BaseDelay() time.Duration {
	if c.RetryBaseDelay == nil {
		return retry.DefaultBaseDelay
	}
	return c.RetryBaseDelay.Std()
}

// RetryPolicy returns the retry policy for model calls
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{Retries: c.Retries(), BaseDelay: c.BaseDelay()}
}

// LLMConfig returns the model configuration
func (c *Config) LLMConfig() *llm.Config {
	return llm.DefaultConfig().
		WithGenerationModel(c.GenerationModel).
		WithEmbeddingModel(c.EmbeddingModel)
}
