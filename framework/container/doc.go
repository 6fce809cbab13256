// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built
// instances, aliases, tags, contextual bindings, extension (decoration) and
// declared-dependency closures. Because Go has no runtime constructor
// reflection, auto-wiring works from an explicit ordered dependency list
// declared at registration (see Closure) instead of parameter-type
// inspection.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Serve requests
//
// # Bindings
//
//	// Transient — new instance every Make()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(c *container.Container) any { return &Foo{} })
//
//	// Singleton — created once, reused, immutable afterwards
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache)
//	c.Singleton("cache", func(c *container.Container) any {
//	    cfg := container.Resolve[*config.Config](c, "config")
//	    return cache.New(cfg)
//	})
//
//	// Pre-built value
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
//
//	// A constructed instance may even serve as its own identifier;
//	// the key is derived from its runtime type.
//	c.Bind(&Logger{}, nil)              // bound under "*mypkg.Logger"
//	c.MustMake("mypkg.Logger")          // either spelling resolves it
//
// Re-binding an identifier that is already a singleton fails with
// ErrAlreadySingleton; the original binding keeps resolving.
//
// # Resolving
//
//	// Untyped, with an error
//	raw, err := c.Make("cache")
//
//	// Panic on failure
//	raw := c.MustMake("cache")
//
//	// Generic (preferred — no type assertion required)
//	cache := container.Resolve[*RedisCache](c, "cache")
//
// Make returns ErrUnbound for unregistered identifiers and
// ErrCircularDependency when bindings resolve each other in a loop.
//
// # Declared dependencies / auto-wiring
//
//	c.Singleton("mailer", container.NewClosure(func(args ...any) any {
//	    cfg := args[0].(*config.Config)
//	    log := args[1].(*zap.Logger)
//	    return mail.NewSMTP(cfg, log)
//	}, "config", "log"))
//
// A dependency entry of container.Self injects the container itself. A
// factory may return another factory; resolution chains until a plain
// value remains.
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)
//	//              ->needs(Filesystem::class)
//	//              ->give(fn() => new S3Filesystem)
//	c.When("PhotoController").
//	    Needs("Filesystem").
//	    Give(func(c *container.Container) any { return &S3Filesystem{} })
//
// # Tags
//
//	// Laravel: $app->tag([CpuReport::class, MemReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemReport"}, "reports")
//	reports, err := c.Tagged("reports")
//
// # Extend / Decorate
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
//
// # Map-style access
//
//	m := container.AsMap(c)
//	_ = m.Set("greeting", "hello")   // Bind
//	v, _ := m.Get("greeting")        // Make
//	m.Delete("greeting")             // Forget
//
// # Process-wide instance
//
//	container.SetInstance(c)         // once, at startup
//	c := container.GetInstance()     // nil until set
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(c *container.Container) any {
//	        cfg := container.Resolve[*config.Config](c, "config")
//	        return mail.NewSMTP(cfg.Mail)
//	    })
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) any {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
package container
