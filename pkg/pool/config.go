package pool

import (
	"fmt"
	"time"
)

const (
	// DefaultWorkers is the worker count used when none is configured
	DefaultWorkers = 4

	// DefaultPollInterval is the interval at which Drain polls for
	// "queue empty" and "all workers idle"
	DefaultPollInterval = 10 * time.Millisecond
)

// Config configures a Pool
type Config struct {
	// Workers is the number of persistent worker goroutines.
	// Zero selects DefaultWorkers; negative values are invalid.
	Workers int `yaml:"workers" json:"workers"`

	// PollInterval bounds the latency of Drain's completion waits.
	// Zero selects DefaultPollInterval.
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// Logger receives rejected-submission and task-fault diagnostics.
	// Nil discards them.
	Logger Logger `yaml:"-" json:"-"`

	// ErrorHandler, when set, additionally receives every *TaskError
	ErrorHandler func(error) `yaml:"-" json:"-"`

	// Wrap, when set, is applied to every task at submission time.
	// Used to layer cross-cutting concerns (tracing, timing) around
	// task execution.
	Wrap func(Task) Task `yaml:"-" json:"-"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Workers:      DefaultWorkers,
		PollInterval: DefaultPollInterval,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("%w: poll interval must be >= 0, got %v", ErrInvalidConfig, c.PollInterval)
	}
	return nil
}

// withDefaults fills zero-value fields
func (c Config) withDefaults() Config {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
	return c
}
