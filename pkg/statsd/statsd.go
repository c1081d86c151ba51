package statsd

import (
	"time"

	std "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/goto/salt/log"
)

// Reporter provides functions for reporting metrics. A disabled or nil
// Reporter is safe to use, every call becomes a no-op.
type Reporter struct {
	client *std.Client
	logger log.Logger
	config Config
}

// Init validates the config and initializes the statsD client.
func Init(logger log.Logger, cfg Config) (*Reporter, error) {
	reporter := &Reporter{}
	if !cfg.Enabled {
		logger.Warn("statsd is disabled")
		return reporter, nil
	}

	client, err := std.New(cfg.Address,
		std.WithNamespace(cfg.Prefix),
		std.WithoutTelemetry())
	if err != nil {
		return nil, err
	}

	reporter.client = client
	reporter.logger = logger
	reporter.config = cfg
	return reporter, nil
}

// Close closes statsd connection
func (sd *Reporter) Close() {
	if sd != nil && sd.client != nil {
		sd.client.Close()
	}
}

// Incr returns a increment counter metric.
func (sd *Reporter) Incr(name string) *Metric {
	return sd.metric(name, func(name string, tags []string, rate float64) error {
		if sd == nil || sd.client == nil {
			return nil
		}
		return sd.client.Incr(name, tags, rate)
	})
}

// Timing returns a timer metric.
func (sd *Reporter) Timing(name string, value time.Duration) *Metric {
	return sd.metric(name, func(name string, tags []string, rate float64) error {
		if sd == nil || sd.client == nil {
			return nil
		}
		return sd.client.Timing(name, value, tags, rate)
	})
}

// Gauge creates and returns a new gauge metric.
func (sd *Reporter) Gauge(name string, value float64) *Metric {
	return sd.metric(name, func(name string, tags []string, rate float64) error {
		if sd == nil || sd.client == nil {
			return nil
		}
		return sd.client.Gauge(name, value, tags, rate)
	})
}

func (sd *Reporter) metric(name string, publish func(name string, tags []string, rate float64) error) *Metric {
	var (
		rate   float64
		logger log.Logger
	)
	if sd != nil {
		rate = sd.config.SamplingRate
		logger = sd.logger
	}
	return &Metric{
		rate:        rate,
		logger:      logger,
		name:        name,
		publishFunc: publish,
	}
}
