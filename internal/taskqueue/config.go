package taskqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config tunes an Executor. The zero value gets sane defaults in New.
type Config struct {
	// Shards is the number of worker queues. Jobs for one key always land on
	// the same shard, so per-key FIFO holds; different keys may run in parallel.
	Shards int `envconfig:"SHARDS" default:"4"`
	// QueueSize bounds each shard's queue.
	QueueSize int `envconfig:"QUEUE_SIZE" default:"128"`
	// EnqueueTimeout is how long Submit waits for queue space before failing
	// with QueueFullError.
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`
	// MaxAttempts caps executions per job. The default of 1 means a failed job
	// is reported to ErrorHandler and never retried; reaction and reply jobs
	// rely on that (a failed completion call produces no comment, full stop).
	MaxAttempts int `envconfig:"MAX_ATTEMPTS" default:"1"`
	// BaseBackoff and MaxInterval shape the exponential wait between attempts
	// when MaxAttempts > 1.
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"10s"`

	// ErrorHandler receives the final error of a job that exhausted its
	// attempts (or whose context was canceled before it ran). May be nil.
	// Panics inside the handler are contained.
	ErrorHandler func(error) `ignored:"true"`
}

// LoadConfig reads Config from MQ_* environment variables.
func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process("MQ", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
