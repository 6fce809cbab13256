package container

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Self is the reserved identifier under which every container binds
// itself. A Closure lists it as a dependency to receive the container,
// and Make(Self) always resolves to the container instance.
const Self = "container"

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds a registered concrete (plain value or factory) and
// whether it is a singleton. The singleton flag is immutable: once an
// identifier is bound singleton it cannot be re-bound.
type binding struct {
	concrete  any
	singleton bool
}

// extender wraps an already-resolved instance with decorator logic.
type extender func(instance any, c *Container) any

// BindingInfo is the read-only view of a stored binding returned by
// GetBindings.
type BindingInfo struct {
	Singleton bool
	Resolved  bool
}

// buildFrame is one entry of the resolution stack. The binding pointer
// distinguishes a genuine cycle (same key, same binding) from a
// re-entrant Make after the key was re-bound mid-resolution, which is
// how deferred providers load themselves.
type buildFrame struct {
	key string
	b   *binding
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container, modeled on Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / BindIf / Singleton / SingletonIf / Instance / Alias
//   - Make with explicit parameters / Resolve (generic)
//   - Declared-dependency closures (auto-wiring)
//   - Tags (group multiple abstractions under one tag)
//   - Extend (decorate / wrap resolved instances)
//   - Contextual binding (when A needs B, give it C)
//   - Rebound callbacks
//   - Resolved event callbacks
type Container struct {
	mu sync.RWMutex

	// canonical id → binding
	bindings map[string]*binding

	// canonical id → resolved singleton instance
	instances map[string]any

	// canonical ids known to be runtime type keys; populated when a
	// constructed instance is bound under its own type. Drives the
	// pointer/bare spelling normalization.
	classes map[string]bool

	// alias → abstract (canonical key)
	aliases map[string]string

	// canonical id → extender funcs
	extenders map[string][]extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// rebound callbacks: canonical id → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)

	// stack of bindings currently being resolved (contextual lookup +
	// cycle detection)
	buildStack []buildFrame
}

// New creates an empty container, pre-bound to itself under Self.
func New() *Container {
	c := &Container{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		classes:          make(map[string]bool),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]Factory),
		reboundCallbacks: make(map[string][]func(any)),
	}
	c.bindSelf()
	return c
}

// bindSelf registers the container under its reserved key and aliases
// its own type key to it, so Make(Self), Make(TypeKey(c)) and a Closure
// dependency on either all self-inject. Callers hold mu or own the only
// reference.
func (c *Container) bindSelf() {
	c.bindings[Self] = &binding{concrete: c, singleton: true}
	c.instances[Self] = c
	key := TypeKey(c)
	c.classes[key] = true
	c.aliases[key] = Self
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) binding.
//
// The identifier is normally a string. A constructed instance may be
// passed instead: its runtime type key becomes the identifier, the key
// is recorded as a known type, and the instance itself is the bound
// value.
//
// Factories (Factory, func(*Container) any, func() any, *Closure) are
// stored as factories and invoked on Make; any other value resolves to
// itself unchanged.
//
// Returns the registered value, or ErrAlreadySingleton when the
// identifier is already bound as a singleton.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) any {
//	    return &EloquentUserRepository{DB: container.Resolve[*sql.DB](c, "db")}
//	})
func (c *Container) Bind(id, value any) (any, error) {
	return c.bind(id, value, false)
}

// Singleton registers a binding whose result is cached after first
// resolution and which cannot be re-bound afterwards.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
//	c.Singleton("cache", func(c *container.Container) any {
//	    return cache.New(container.Resolve[*config.Config](c, "config"))
//	})
func (c *Container) Singleton(id, value any) (any, error) {
	return c.bind(id, value, true)
}

// BindIf registers a transient binding only when the identifier is not
// already bound. Silent no-op otherwise.
func (c *Container) BindIf(id, value any) {
	if c.boundAny(id) {
		return
	}
	_, _ = c.bind(id, value, false)
}

// SingletonIf registers a singleton only when the identifier is not
// already bound. Silent no-op otherwise.
func (c *Container) SingletonIf(id, value any) {
	if c.boundAny(id) {
		return
	}
	_, _ = c.bind(id, value, true)
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, v any) (any, error) {
	return c.bind(abstract, v, true)
}

// bind is the internal registration helper shared by all Bind variants.
func (c *Container) bind(id, value any, singleton bool) (any, error) {
	c.mu.Lock()

	key, isString := id.(string)
	if isString {
		key = c.normalize(key)
	} else {
		// A constructed instance used as its own identifier: derive
		// the key from its runtime type, remember it as a type key and
		// bind the instance itself.
		key = TypeKey(id)
		c.classes[key] = true
		value = id
	}

	if b, ok := c.bindings[key]; ok && b.singleton {
		c.mu.Unlock()
		return nil, fmt.Errorf("container: bind [%s]: %w", key, ErrAlreadySingleton)
	}

	// Drop an existing resolved instance so the key is rebuilt with
	// the new binding.
	_, wasBound := c.bindings[key]
	delete(c.instances, key)

	c.bindings[key] = &binding{concrete: value, singleton: singleton}

	// Singleton plain values resolve to themselves; cache them up front.
	if singleton && !invokable(value) {
		c.instances[key] = value
	}
	hasCallbacks := len(c.reboundCallbacks[key]) > 0
	c.mu.Unlock()

	if wasBound && hasCallbacks {
		if v, err := c.make(key, nil); err == nil {
			c.fireRebound(key, v)
		}
	}
	return value, nil
}

// boundAny reports whether the identifier, string or instance, has an
// active binding.
func (c *Container) boundAny(id any) bool {
	if s, ok := id.(string); ok {
		return c.Bound(s)
	}
	return c.Bound(TypeKey(id))
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.normalize(abstract)
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) any {
//	    return filesystem.NewS3(...)
//	})
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// getContextual returns the contextual factory for (concrete, abstract), or nil.
func (c *Container) getContextual(concrete, abstract string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		if f, ok := m[abstract]; ok {
			return f
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return logging.NewTimestampWrapper(instance.(*Logger))
//	})
func (c *Container) Extend(abstract string, fn extender) {
	c.mu.Lock()
	key := c.normalize(abstract)
	c.extenders[key] = append(c.extenders[key], fn)

	// An already-resolved singleton is re-wrapped in place.
	inst, resolved := c.instances[key]
	if resolved {
		inst = fn(inst, c)
		c.instances[key] = inst
	}
	c.mu.Unlock()

	if resolved {
		c.fireRebound(key, inst)
	}
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag.
//
//	// Laravel: $app->tagged('reports')
//	reports, err := c.Tagged("reports")
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	abstracts := c.tags[tag]
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		v, err := c.make(abs, nil)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container. Explicit params fill
// the positional slots of a Closure that auto-wiring leaves open.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Make("UserRepository")
func (c *Container) Make(abstract string, params ...any) (any, error) {
	return c.make(abstract, params)
}

// MustMake is Make that panics on failure.
func (c *Container) MustMake(abstract string, params ...any) any {
	v, err := c.make(abstract, params)
	if err != nil {
		panic(err)
	}
	return v
}

// make is the internal resolver (no outer lock — individual ops lock as needed).
func (c *Container) make(abstract string, params []any) (any, error) {
	c.mu.RLock()
	key := c.normalize(abstract)

	// Check singleton instance cache
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	c.mu.RUnlock()

	// Check contextual binding (look at current build stack top)
	if len(c.buildStack) > 0 {
		caller := c.buildStack[len(c.buildStack)-1].key
		if f := c.getContextual(caller, key); f != nil {
			return c.build(key, &binding{concrete: f}, params)
		}
	}

	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("container: make [%s]: %w", abstract, ErrUnbound)
	}
	return c.build(key, b, params)
}

// build runs chained resolution for one binding, guarding against
// cycles, applying extenders and caching the result when shared.
func (c *Container) build(key string, b *binding, params []any) (any, error) {
	for _, frame := range c.buildStack {
		if frame.key == key && frame.b == b {
			chain := make([]string, 0, len(c.buildStack)+1)
			for _, f := range c.buildStack {
				chain = append(chain, f.key)
			}
			chain = append(chain, key)
			return nil, fmt.Errorf("container: %s: %w",
				strings.Join(chain, " -> "), ErrCircularDependency)
		}
	}

	c.buildStack = append(c.buildStack, buildFrame{key: key, b: b})
	instance, err := c.resolve(b.concrete, params)
	c.buildStack = c.buildStack[:len(c.buildStack)-1]
	if err != nil {
		return nil, err
	}

	// Apply extenders
	c.mu.RLock()
	exts := c.extenders[key]
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}

	if b.singleton {
		c.mu.Lock()
		c.instances[key] = instance
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance, nil
}

// resolve invokes concrete until a non-invokable value remains. A
// factory may return another factory; each result feeds back through
// the same procedure, the plain value being the base case that stops
// the chain.
func (c *Container) resolve(concrete any, params []any) (any, error) {
	for {
		switch f := concrete.(type) {
		case *Closure:
			args, err := c.closureArgs(f, params)
			if err != nil {
				return nil, err
			}
			concrete = f.fn(args...)
		case Factory:
			concrete = f(c)
		case func(*Container) any:
			concrete = f(c)
		case func() any:
			concrete = f()
		default:
			return concrete, nil
		}
	}
}

// invokable reports whether v is one of the factory shapes resolve
// recognises.
func invokable(v any) bool {
	switch v.(type) {
	case *Closure, Factory, func(*Container) any, func() any:
		return true
	}
	return false
}

// ── Introspection ─────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.normalize(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Has is an alias for Bound.
func (c *Container) Has(abstract string) bool { return c.Bound(abstract) }

// IsSingleton reports whether the identifier is bound as a singleton.
// A non-string identifier is ErrInvalidIdentifier; an unbound one is
// false without error.
func (c *Container) IsSingleton(id any) (bool, error) {
	s, ok := id.(string)
	if !ok {
		return false, fmt.Errorf("container: is-singleton: got %T: %w", id, ErrInvalidIdentifier)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[c.normalize(s)]
	if !ok {
		return false, nil
	}
	return b.singleton, nil
}

// Resolved returns true if the abstract has been resolved at least once.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.normalize(abstract)]
	return ok
}

// Bindings returns a copy of all registered abstract keys (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// GetBindings returns a copy-on-read snapshot of the binding table.
// Mutating the returned map does not touch container state.
func (c *Container) GetBindings() map[string]BindingInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]BindingInfo, len(c.bindings))
	for k, b := range c.bindings {
		_, resolved := c.instances[k]
		out[k] = BindingInfo{Singleton: b.singleton, Resolved: resolved}
	}
	return out
}

// ── Removal ───────────────────────────────────────────────────────────────────

// Forget removes all registrations for an abstract (binding + instance).
// Idempotent: unknown identifiers are a no-op.
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.normalize(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Flush resets the entire container, then re-binds it to itself so
// Self keeps resolving.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.classes = make(map[string]bool)
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]Factory)
	c.bindSelf()
}

// ── Normalization ─────────────────────────────────────────────────────────────

// normalize maps the equivalent spellings of an identifier to one
// canonical storage key (callers hold mu or mu.RLock):
//
//   - aliases resolve to their target first;
//   - identifiers without a package qualifier are used verbatim;
//   - the pointer spelling "*pkg.T" and bare spelling "pkg.T" are the
//     same identifier, canonicalized to the pointer spelling when it is
//     a known type key and to the bare one otherwise;
//   - the canonical form may itself be aliased (the container's own
//     type key aliases to Self).
//
// Every operation taking an identifier goes through this one procedure.
func (c *Container) normalize(id string) string {
	if target, ok := c.aliases[id]; ok {
		id = target
	}
	if strings.Contains(id, ".") {
		bare := strings.TrimPrefix(id, "*")
		if c.classes["*"+bare] {
			id = "*" + bare
		} else {
			id = bare
		}
	}
	if target, ok := c.aliases[id]; ok {
		id = target
	}
	return id
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.normalize(abstract)
	c.reboundCallbacks[key] = append(c.reboundCallbacks[key], cb)
}

// AfterResolving registers a callback fired after any abstract is resolved.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(key string, instance any) {
	c.mu.RLock()
	cbs := c.reboundCallbacks[key]
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(key string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(key, instance)
	}
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type key of v. Pointer types
// keep their leading star: that is the "absolute" spelling which
// normalize folds together with the bare one.
//
//	key := container.TypeKey(&UserRepository{})  // "*app.UserRepository"
//	c.Singleton(key, factory)
//	repo := container.Resolve[*UserRepository](c, key)
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		return "*" + t.Elem().PkgPath() + "." + t.Elem().Name()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	// Instead of: db := c.MustMake("db").(*sql.DB)
//	// Write:      db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.MustMake(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// TryResolve is like Resolve but returns an error instead of panicking.
func TryResolve[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: resolve [%s]: want %T, got %T", abstract, zero, instance)
	}
	return typed, nil
}
