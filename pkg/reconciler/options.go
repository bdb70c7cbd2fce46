package reconciler

import (
	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/metrics"
)

// Options configures a reconciler.
type options struct {
	identifiers        delta.IdentifierPolicy
	includeIsA         bool
	isAType            int64
	characteristicType string
	dryRun             bool
	maxUnresolved      int
	progressInterval   int
	recorder           *metrics.Recorder
	metricsFile        string
}

func defaultOptions() *options {
	return &options{
		identifiers:        delta.IdentifiersBlank,
		isAType:            constants.IsAType,
		characteristicType: constants.StatedCharacteristicType,
		maxUnresolved:      constants.DefaultMaxUnresolved,
		progressInterval:   constants.ProgressInterval,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithIdentifierPolicy sets how activation and addition rows get their ids.
func WithIdentifierPolicy(policy delta.IdentifierPolicy) Option {
	return func(o *options) error {
		p, err := delta.ParseIdentifierPolicy(policy.String())
		if err != nil {
			return err
		}
		o.identifiers = p
		return nil
	}
}

// WithIncludeIsA reconciles is-a edges as well as attributes.
func WithIncludeIsA(include bool) Option {
	return func(o *options) error {
		o.includeIsA = include
		return nil
	}
}

// WithIsAType sets the type identifier of hierarchy edges.
func WithIsAType(id int64) Option {
	return func(o *options) error {
		if id <= 0 {
			return &errors.ValidationError{
				Field:   "is_a_type",
				Value:   id,
				Message: "must be a positive concept identifier",
			}
		}
		o.isAType = id
		return nil
	}
}

// WithCharacteristicType sets the characteristic type written on activations.
func WithCharacteristicType(id string) Option {
	return func(o *options) error {
		if id == "" {
			return &errors.ValidationError{
				Field:   "stated_characteristic_type",
				Message: "cannot be empty",
			}
		}
		o.characteristicType = id
		return nil
	}
}

// WithDryRun plans the delta without writing it.
func WithDryRun(dryRun bool) Option {
	return func(o *options) error {
		o.dryRun = dryRun
		return nil
	}
}

// WithMaxUnresolved bounds how many unresolved orphans are logged and reported.
func WithMaxUnresolved(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{
				Field:   "max_unresolved",
				Value:   n,
				Message: "cannot be negative",
			}
		}
		o.maxUnresolved = n
		return nil
	}
}

// WithProgressInterval sets how many edges pass between progress logs.
func WithProgressInterval(n int) Option {
	return func(o *options) error {
		o.progressInterval = n
		return nil
	}
}

// WithMetrics records run metrics on recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(o *options) error {
		o.recorder = recorder
		return nil
	}
}

// WithMetricsFile writes run metrics to path when the run finishes. A
// recorder is created if none was given.
func WithMetricsFile(path string) Option {
	return func(o *options) error {
		o.metricsFile = path
		if path != "" && o.recorder == nil {
			o.recorder = metrics.New()
		}
		return nil
	}
}
