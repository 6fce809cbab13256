// Package providers holds the framework's core service providers,
// registered by app.New in the same order Laravel boots its own.
package providers

import (
	"go.uber.org/zap"

	"github.com/keelframe/keel/framework/config"
	"github.com/keelframe/keel/framework/container"
	"github.com/keelframe/keel/framework/logging"
	"github.com/keelframe/keel/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"        → *config.Config
//   - "configuration" → alias of "config"
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) any {
		return config.Load(envFiles...)
	})
	app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the application's zap logger from the
// Log section of the configuration.
//
// Bound abstracts:
//   - "log"    → *zap.Logger
//   - "logger" → alias of "log"
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton("log", container.NewClosure(func(args ...any) any {
		cfg := args[0].(*config.Config)
		return logging.New(cfg.Log)
	}, "config"))
	app.Alias("log", "logger")
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router with the structured
// access log already attached.
//
// Bound abstracts:
//   - "router" → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", container.NewClosure(func(args ...any) any {
		logger := args[0].(*zap.Logger)
		r := routing.New()
		r.Middleware(routing.AccessLog(logger))
		return r
	}, "log"))
}
