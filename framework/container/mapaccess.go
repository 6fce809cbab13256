package container

// Map exposes a container through a plain map-style interface — the Go
// rendering of ArrayAccess on Laravel's container. It carries no logic
// of its own: Has forwards to Bound, Get to Make (auto-wiring only),
// Set to a transient Bind and Delete to Forget.
//
//	m := container.AsMap(c)
//	_ = m.Set("greeting", "hello")
//	v, _ := m.Get("greeting")
type Map struct {
	c *Container
}

// AsMap returns a map-style view of c.
func AsMap(c *Container) *Map { return &Map{c: c} }

// Has reports whether the identifier is bound.
func (m *Map) Has(id string) bool { return m.c.Bound(id) }

// Get resolves the identifier with no explicit parameters.
func (m *Map) Get(id string) (any, error) { return m.c.Make(id) }

// Set registers a transient binding.
func (m *Map) Set(id string, v any) error {
	_, err := m.c.Bind(id, v)
	return err
}

// Delete removes the identifier. Idempotent.
func (m *Map) Delete(id string) { m.c.Forget(id) }
