package container

// Closure pairs a variadic factory function with the ordered
// identifiers of its dependencies. Go cannot inspect the parameter
// types of a function value at runtime, so the dependency list is
// declared at registration and stands in for the declared parameter
// types of the source closure.
//
// Each entry is resolved in order when the closure is invoked:
//
//   - Self      → the container itself
//   - bound id  → Make(id), recursing through that binding's own
//     dependencies (auto-wiring)
//   - "" or an unbound id → filled positionally from the explicit
//     parameters passed to Make
//
//	c.Singleton("mailer", container.NewClosure(func(args ...any) any {
//	    cfg := args[0].(*config.Config)
//	    log := args[1].(*zap.Logger)
//	    return mail.NewSMTP(cfg, log)
//	}, "config", "log"))
type Closure struct {
	fn   func(args ...any) any
	deps []string
}

// NewClosure builds a Closure from fn and its ordered dependency
// identifiers.
func NewClosure(fn func(args ...any) any, deps ...string) *Closure {
	return &Closure{fn: fn, deps: deps}
}

// Deps returns a copy of the declared dependency identifiers.
func (cl *Closure) Deps() []string {
	out := make([]string, len(cl.deps))
	copy(out, cl.deps)
	return out
}

// closureArgs assembles the argument list for cl. Declared dependencies
// are auto-wired; untyped ("") or unresolvable entries are filled
// positionally from params, and leftover params pad the tail so
// explicit arguments can reach slots past what auto-wiring filled.
func (c *Container) closureArgs(cl *Closure, params []any) ([]any, error) {
	args := make([]any, 0, len(cl.deps))
	rest := params
	for _, dep := range cl.deps {
		switch {
		case dep == Self:
			args = append(args, c)
		case dep != "" && c.Bound(dep):
			v, err := c.make(dep, nil)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		default:
			if len(rest) > 0 {
				args = append(args, rest[0])
				rest = rest[1:]
			}
		}
	}

	// A closure that declares dependencies but got nothing — neither
	// resolvable identifiers nor explicit parameters — receives the
	// container as its sole argument.
	if len(cl.deps) > 0 && len(args) == 0 && len(params) == 0 {
		return []any{c}, nil
	}

	return append(args, rest...), nil
}
