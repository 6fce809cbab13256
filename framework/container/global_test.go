package container_test

import (
	"testing"

	"github.com/keelframe/keel/framework/container"
)

func TestGlobal_InstanceAccessors(t *testing.T) {
	// Restore whatever was published before this test.
	prev := container.GetInstance()
	defer container.SetInstance(prev)

	container.SetInstance(nil)
	if container.GetInstance() != nil {
		t.Error("GetInstance should be nil until SetInstance is called")
	}

	c := container.New()
	if got := container.SetInstance(c); got != c {
		t.Error("SetInstance should return the published container")
	}
	if container.GetInstance() != c {
		t.Error("GetInstance should return the published container")
	}
}
