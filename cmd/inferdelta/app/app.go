// Package app provides the application context and dependency management
// for the inferdelta CLI. It centralizes configuration, logging and the
// standard streams so commands can be executed in tests.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/inferdelta/pkg/errors"
)

// App represents the inferdelta application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// logLevel holds an explicit --log-level; it beats -v/-q and the config.
	logLevel string

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// New creates a new App instance with the given version information.
// Configuration is loaded from .env files, the environment and the config
// file, and can be replaced with functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config, "")
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "cannot be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithIO replaces the standard streams. Nil streams are left unchanged.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) error {
		if in != nil {
			a.in = in
		}
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
		return nil
	}
}
