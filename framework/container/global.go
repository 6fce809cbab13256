package container

// instance is the process-wide default container. By contract it has a
// single writer at startup, so the accessors carry no locking.
var instance *Container

// SetInstance publishes c as the process-wide container and returns it.
//
//	// Laravel: Container::setInstance($container)
func SetInstance(c *Container) *Container {
	instance = c
	return c
}

// GetInstance returns the process-wide container, or nil when none has
// been published.
//
//	// Laravel: Container::getInstance()
func GetInstance() *Container {
	return instance
}
