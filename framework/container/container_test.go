package container_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/keelframe/keel/framework/container"
)

// widget is bound by instance in the normalization tests; its runtime
// type key exercises the pointer/bare spelling rules.
type widget struct {
	n int
}

// ── Bind / Make round trips ───────────────────────────────────────────────────

func TestBind_ValueRoundTrip(t *testing.T) {
	c := container.New()

	bound, err := c.Bind("logger", "stdout-logger")
	if err != nil {
		t.Fatalf("Bind: unexpected error: %v", err)
	}
	if bound != "stdout-logger" {
		t.Errorf("Bind should echo the registered value, got %v", bound)
	}

	got := c.MustMake("logger").(string)
	if got != "stdout-logger" {
		t.Errorf("Make(logger): got %q, want 'stdout-logger'", got)
	}
}

func TestBind_FactoryInvokedPerMake(t *testing.T) {
	c := container.New()

	n := 0
	_, _ = c.Bind("counter", func(c *container.Container) any {
		n++
		return n
	})

	first := c.MustMake("counter").(int)
	second := c.MustMake("counter").(int)
	if first != 1 || second != 2 {
		t.Errorf("transient factory should run per Make: got %d then %d", first, second)
	}
}

func TestBind_ZeroArgFactory(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("answer", func() any { return 42 })

	if got := c.MustMake("answer").(int); got != 42 {
		t.Errorf("Make(answer): got %d, want 42", got)
	}
}

func TestSingleton_SameInstanceEachMake(t *testing.T) {
	c := container.New()

	calls := 0
	_, _ = c.Singleton("db", func(c *container.Container) any {
		calls++
		return &widget{n: calls}
	})

	first := c.MustMake("db").(*widget)
	second := c.MustMake("db").(*widget)
	if first != second {
		t.Error("singleton should resolve to the same instance each Make")
	}
	if calls != 1 {
		t.Errorf("singleton factory should run once, ran %d times", calls)
	}
}

func TestSingleton_RebindFails(t *testing.T) {
	c := container.New()
	_, _ = c.Singleton("db", "primary")

	_, err := c.Bind("db", "replacement")
	if !errors.Is(err, container.ErrAlreadySingleton) {
		t.Fatalf("rebinding a singleton: got %v, want ErrAlreadySingleton", err)
	}

	// The original binding must survive the failed rebind.
	if got := c.MustMake("db").(string); got != "primary" {
		t.Errorf("after failed rebind: got %q, want 'primary'", got)
	}
}

func TestSingleton_PlainValueResolvedImmediately(t *testing.T) {
	c := container.New()
	_, _ = c.Singleton("version", "1.4.2")

	if !c.Resolved("version") {
		t.Error("a singleton plain value should be resolved at bind time")
	}
}

func TestBindIf_SkipsWhenAlreadyBound(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("driver", "postgres")

	c.BindIf("driver", "sqlite")
	if got := c.MustMake("driver").(string); got != "postgres" {
		t.Errorf("BindIf over an existing binding: got %q, want 'postgres'", got)
	}

	c.BindIf("fresh", "value")
	if got := c.MustMake("fresh").(string); got != "value" {
		t.Errorf("BindIf on a fresh identifier: got %q, want 'value'", got)
	}
}

func TestSingletonIf_SkipsWhenAlreadyBound(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("cache", "memory")

	c.SingletonIf("cache", "redis")
	if got := c.MustMake("cache").(string); got != "memory" {
		t.Errorf("SingletonIf over an existing binding: got %q, want 'memory'", got)
	}

	c.SingletonIf("store", "disk")
	if singleton, _ := c.IsSingleton("store"); !singleton {
		t.Error("SingletonIf on a fresh identifier should bind singleton")
	}
}

func TestInstance_PreBuiltSingleton(t *testing.T) {
	c := container.New()
	w := &widget{n: 9}
	_, _ = c.Instance("widget", w)

	if got := c.MustMake("widget").(*widget); got != w {
		t.Error("Instance should resolve to the exact pre-built value")
	}
	if singleton, _ := c.IsSingleton("widget"); !singleton {
		t.Error("Instance should register as singleton")
	}
}

// ── Existence & introspection ─────────────────────────────────────────────────

func TestBound_FalseForUnknown(t *testing.T) {
	c := container.New()
	if c.Bound("never-registered") {
		t.Error("Bound should be false for an unregistered identifier")
	}
}

func TestBound_FalseAfterForget(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("tmp", "x")
	c.Forget("tmp")
	if c.Bound("tmp") {
		t.Error("Bound should be false after Forget")
	}
}

func TestIsSingleton_Flags(t *testing.T) {
	c := container.New()
	_, _ = c.Singleton("shared", "a")
	_, _ = c.Bind("transient", "b")

	if got, _ := c.IsSingleton("shared"); !got {
		t.Error("IsSingleton(shared): want true")
	}
	if got, _ := c.IsSingleton("transient"); got {
		t.Error("IsSingleton(transient): want false")
	}
}

func TestIsSingleton_UnboundIsFalseNotError(t *testing.T) {
	c := container.New()
	got, err := c.IsSingleton("missing")
	if err != nil {
		t.Fatalf("IsSingleton(missing): unexpected error %v", err)
	}
	if got {
		t.Error("IsSingleton(missing): want false")
	}
}

func TestIsSingleton_NonStringIdentifier(t *testing.T) {
	c := container.New()
	_, err := c.IsSingleton(123)
	if !errors.Is(err, container.ErrInvalidIdentifier) {
		t.Errorf("IsSingleton(123): got %v, want ErrInvalidIdentifier", err)
	}
}

func TestMake_UnboundError(t *testing.T) {
	c := container.New()
	_, err := c.Make("ghost")
	if !errors.Is(err, container.ErrUnbound) {
		t.Errorf("Make(ghost): got %v, want ErrUnbound", err)
	}
}

func TestMustMake_PanicsOnUnbound(t *testing.T) {
	c := container.New()
	defer func() {
		if recover() == nil {
			t.Error("MustMake on an unbound identifier should panic")
		}
	}()
	c.MustMake("ghost")
}

// ── Identifier normalization ──────────────────────────────────────────────────

func TestInstanceBinding_SpellingsResolveSameBinding(t *testing.T) {
	c := container.New()
	w := &widget{n: 7}

	// A constructed instance as its own identifier: key derived from
	// the runtime type.
	if _, err := c.Bind(w, nil); err != nil {
		t.Fatalf("Bind(instance): %v", err)
	}

	starred := container.TypeKey(w)
	bare := strings.TrimPrefix(starred, "*")

	if got := c.MustMake(starred).(*widget); got != w {
		t.Errorf("Make(%q): did not resolve the bound instance", starred)
	}
	if got := c.MustMake(bare).(*widget); got != w {
		t.Errorf("Make(%q): the bare spelling should reach the same binding", bare)
	}
	if !c.Bound(bare) || !c.Bound(starred) {
		t.Error("Bound should accept either spelling")
	}

	c.Forget(bare)
	if c.Bound(starred) {
		t.Error("Forget through one spelling should remove the other too")
	}
}

func TestNormalization_IdentifiersWithoutQualifierUntouched(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("plain", 1)
	_, _ = c.Bind("*starred-but-plain", 2)

	if got := c.MustMake("plain").(int); got != 1 {
		t.Errorf("Make(plain): got %d, want 1", got)
	}
	// No package qualifier, so the leading star is not folded.
	if got := c.MustMake("*starred-but-plain").(int); got != 2 {
		t.Errorf("Make(*starred-but-plain): got %d, want 2", got)
	}
}

// ── Auto-wiring ───────────────────────────────────────────────────────────────

func TestClosure_AutoWiringOrder(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("A", "alpha")
	_, _ = c.Bind("B", "beta")

	_, _ = c.Bind("C", container.NewClosure(func(args ...any) any {
		return fmt.Sprintf("%v+%v", args[0], args[1])
	}, "A", "B"))

	if got := c.MustMake("C").(string); got != "alpha+beta" {
		t.Errorf("auto-wired closure: got %q, want 'alpha+beta'", got)
	}
}

func TestClosure_SelfInjection(t *testing.T) {
	c := container.New()

	_, _ = c.Bind("needs-container", container.NewClosure(func(args ...any) any {
		return args[0]
	}, container.Self))

	if got := c.MustMake("needs-container"); got != any(c) {
		t.Error("a Self dependency should inject the container instance")
	}
}

func TestClosure_ContainerAsSoleArgumentFallback(t *testing.T) {
	c := container.New()

	// One declared dependency, unresolvable, no explicit parameters:
	// the container itself is passed as the only argument.
	_, _ = c.Bind("fallback", container.NewClosure(func(args ...any) any {
		if len(args) != 1 {
			t.Fatalf("want exactly one argument, got %d", len(args))
		}
		return args[0]
	}, "some.unbound.Dependency"))

	if got := c.MustMake("fallback"); got != any(c) {
		t.Error("closure with nothing resolved should receive the container")
	}
}

func TestClosure_PositionalParameters(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("A", "alpha")

	_, _ = c.Bind("pair", container.NewClosure(func(args ...any) any {
		return fmt.Sprintf("%v/%v", args[0], args[1])
	}, "A", ""))

	got := c.MustMake("pair", "explicit").(string)
	if got != "alpha/explicit" {
		t.Errorf("positional fill: got %q, want 'alpha/explicit'", got)
	}
}

func TestClosure_ExplicitParametersPadTail(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("A", "alpha")

	_, _ = c.Bind("triple", container.NewClosure(func(args ...any) any {
		return fmt.Sprintf("%v/%v/%v", args[0], args[1], args[2])
	}, "A"))

	got := c.MustMake("triple", "x", "y").(string)
	if got != "alpha/x/y" {
		t.Errorf("parameter padding: got %q, want 'alpha/x/y'", got)
	}
}

func TestMake_Self(t *testing.T) {
	c := container.New()
	if got := c.MustMake(container.Self); got != any(c) {
		t.Error("Make(Self) should return the container itself")
	}
	if got := c.MustMake(container.TypeKey(c)); got != any(c) {
		t.Error("Make(TypeKey(container)) should return the container itself")
	}
}

// ── Chained factories ─────────────────────────────────────────────────────────

func TestChainedFactories_ResolveToFinalValue(t *testing.T) {
	c := container.New()

	_, _ = c.Bind("D", func() any {
		return func() any { return "final" }
	})

	if got := c.MustMake("D").(string); got != "final" {
		t.Errorf("chained factories: got %q, want 'final'", got)
	}
}

func TestChainedFactories_ClosureReturningFactory(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("A", "alpha")

	_, _ = c.Bind("chain", container.NewClosure(func(args ...any) any {
		prefix := args[0].(string)
		return func() any { return prefix + "-made" }
	}, "A"))

	if got := c.MustMake("chain").(string); got != "alpha-made" {
		t.Errorf("closure chain: got %q, want 'alpha-made'", got)
	}
}

// ── Circular dependencies ─────────────────────────────────────────────────────

func TestCircularDependency_MutualBindings(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("ping", container.NewClosure(func(args ...any) any { return args[0] }, "pong"))
	_, _ = c.Bind("pong", container.NewClosure(func(args ...any) any { return args[0] }, "ping"))

	_, err := c.Make("ping")
	if !errors.Is(err, container.ErrCircularDependency) {
		t.Errorf("mutual bindings: got %v, want ErrCircularDependency", err)
	}
}

func TestCircularDependency_SelfReferential(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("loop", container.NewClosure(func(args ...any) any { return args[0] }, "loop"))

	_, err := c.Make("loop")
	if !errors.Is(err, container.ErrCircularDependency) {
		t.Errorf("self-referential binding: got %v, want ErrCircularDependency", err)
	}
}

// ── Removal & reset ───────────────────────────────────────────────────────────

func TestForget_Idempotent(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("tmp", "x")

	c.Forget("tmp")
	c.Forget("tmp")          // second call is a no-op
	c.Forget("never-there")  // unknown identifiers too

	if c.Bound("tmp") {
		t.Error("Bound should be false after Forget")
	}
}

func TestFlush_ClearsEverything(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("a", 1)
	_, _ = c.Singleton("b", 2)
	c.Alias("a", "a-alias")

	c.Flush()

	for _, id := range []string{"a", "b", "a-alias"} {
		if c.Bound(id) {
			t.Errorf("after Flush, Bound(%q) should be false", id)
		}
	}

	// The container stays bound to itself.
	if got := c.MustMake(container.Self); got != any(c) {
		t.Error("after Flush, Self should still resolve to the container")
	}
}

// ── Snapshots ─────────────────────────────────────────────────────────────────

func TestGetBindings_Snapshot(t *testing.T) {
	c := container.New()
	_, _ = c.Singleton("shared", "a")
	_, _ = c.Bind("transient", "b")
	_ = c.MustMake("shared")

	snap := c.GetBindings()
	if info := snap["shared"]; !info.Singleton || !info.Resolved {
		t.Errorf("shared: got %+v, want singleton and resolved", info)
	}
	if info := snap["transient"]; info.Singleton {
		t.Errorf("transient: got %+v, want non-singleton", info)
	}

	// Copy-on-read: mutating the snapshot must not touch the container.
	delete(snap, "shared")
	if _, ok := c.GetBindings()["shared"]; !ok {
		t.Error("mutating the snapshot leaked into container state")
	}
}

// ── Aliases ───────────────────────────────────────────────────────────────────

func TestAlias_ResolvesThroughAlias(t *testing.T) {
	c := container.New()
	_, _ = c.Singleton("cache", "redis")
	c.Alias("cache", "cacheManager")

	if got := c.MustMake("cacheManager").(string); got != "redis" {
		t.Errorf("Make(cacheManager): got %q, want 'redis'", got)
	}
	if singleton, _ := c.IsSingleton("cacheManager"); !singleton {
		t.Error("IsSingleton should see through aliases")
	}
}

func TestAlias_SelfAliasPanics(t *testing.T) {
	c := container.New()
	defer func() {
		if recover() == nil {
			t.Error("aliasing an abstract to itself should panic")
		}
	}()
	c.Alias("x", "x")
}

// ── Contextual bindings ───────────────────────────────────────────────────────

func TestContextual_OverridesWhileBuilding(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("filesystem", "local")
	c.When("photo-service").Needs("filesystem").GiveValue("s3")

	_, _ = c.Bind("photo-service", container.NewClosure(func(args ...any) any {
		return args[0]
	}, "filesystem"))

	if got := c.MustMake("photo-service").(string); got != "s3" {
		t.Errorf("contextual binding: got %q, want 's3'", got)
	}
	// Outside the photo-service build, the global binding wins.
	if got := c.MustMake("filesystem").(string); got != "local" {
		t.Errorf("direct Make(filesystem): got %q, want 'local'", got)
	}
}

// ── Extend ────────────────────────────────────────────────────────────────────

func TestExtend_DecoratesResolvedValue(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("greeting", "hello")
	c.Extend("greeting", func(instance any, c *container.Container) any {
		return instance.(string) + ", world"
	})

	if got := c.MustMake("greeting").(string); got != "hello, world" {
		t.Errorf("extended binding: got %q, want 'hello, world'", got)
	}
}

func TestExtend_AppliedToResolvedSingleton(t *testing.T) {
	c := container.New()
	_, _ = c.Singleton("greeting", "hello")
	_ = c.MustMake("greeting")

	c.Extend("greeting", func(instance any, c *container.Container) any {
		return instance.(string) + "!"
	})

	if got := c.MustMake("greeting").(string); got != "hello!" {
		t.Errorf("extending a resolved singleton: got %q, want 'hello!'", got)
	}
}

// ── Tags ──────────────────────────────────────────────────────────────────────

func TestTagged_ResolvesGroup(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("cpu-report", "cpu")
	_, _ = c.Bind("mem-report", "mem")
	c.Tag([]string{"cpu-report", "mem-report"}, "reports")

	reports, err := c.Tagged("reports")
	if err != nil {
		t.Fatalf("Tagged: %v", err)
	}
	if len(reports) != 2 || reports[0] != "cpu" || reports[1] != "mem" {
		t.Errorf("Tagged(reports): got %v", reports)
	}
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

func TestRebinding_FiredOnRebind(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("svc", "v1")

	var got any
	c.Rebinding("svc", func(v any) { got = v })

	_, _ = c.Bind("svc", "v2")
	if got != "v2" {
		t.Errorf("rebound callback: got %v, want 'v2'", got)
	}
}

func TestRebinding_SilentOnFirstBind(t *testing.T) {
	c := container.New()

	var fired bool
	c.Rebinding("svc", func(any) { fired = true })

	_, _ = c.Bind("svc", "v1")
	if fired {
		t.Error("first bind of an identifier should not fire rebound callbacks")
	}
}

func TestAfterResolving_FiredWithKeyAndInstance(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("svc", "value")

	var gotKey string
	var gotVal any
	c.AfterResolving(func(abstract string, instance any) {
		gotKey = abstract
		gotVal = instance
	})

	_ = c.MustMake("svc")
	if gotKey != "svc" || gotVal != "value" {
		t.Errorf("after-resolving callback: got (%q, %v)", gotKey, gotVal)
	}
}

// ── Generic helpers ───────────────────────────────────────────────────────────

func TestResolve_Typed(t *testing.T) {
	c := container.New()
	w := &widget{n: 3}
	_, _ = c.Instance("widget", w)

	got := container.Resolve[*widget](c, "widget")
	if got != w {
		t.Error("Resolve should return the typed instance")
	}
}

func TestResolve_PanicsOnWrongType(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("num", 7)

	defer func() {
		if recover() == nil {
			t.Error("Resolve with a mismatched type should panic")
		}
	}()
	_ = container.Resolve[string](c, "num")
}

func TestTryResolve_ErrorOnWrongType(t *testing.T) {
	c := container.New()
	_, _ = c.Bind("num", 7)

	if _, err := container.TryResolve[string](c, "num"); err == nil {
		t.Error("TryResolve with a mismatched type should error")
	}
	if got, err := container.TryResolve[int](c, "num"); err != nil || got != 7 {
		t.Errorf("TryResolve[int]: got (%d, %v), want (7, nil)", got, err)
	}
}
