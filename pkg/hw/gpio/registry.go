package gpio

import (
	"fmt"
	"sync"
)

// Registry maps pin identifiers to lines. Bindings are expected to be set
// up once during deployment configuration, before transceivers are created.
type Registry struct {
	lock    sync.RWMutex
	inputs  map[int]InputPin
	outputs map[int]OutputPin
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		inputs:  make(map[int]InputPin),
		outputs: make(map[int]OutputPin),
	}
}

// BindInput binds an input line to a pin identifier, replacing any
// previous binding.
func (r *Registry) BindInput(id int, p InputPin) *Registry {
	r.lock.Lock()
	r.inputs[id] = p
	r.lock.Unlock()
	return r
}

// BindOutput binds an output line to a pin identifier, replacing any
// previous binding.
func (r *Registry) BindOutput(id int, p OutputPin) *Registry {
	r.lock.Lock()
	r.outputs[id] = p
	r.lock.Unlock()
	return r
}

// Input resolves a pin identifier to its input line.
func (r *Registry) Input(id int) (InputPin, error) {
	r.lock.RLock()
	p := r.inputs[id]
	r.lock.RUnlock()
	if p == nil {
		return nil, fmt.Errorf("input pin %d not bound", id)
	}
	return p, nil
}

// Output resolves a pin identifier to its output line.
func (r *Registry) Output(id int) (OutputPin, error) {
	r.lock.RLock()
	p := r.outputs[id]
	r.lock.RUnlock()
	if p == nil {
		return nil, fmt.Errorf("output pin %d not bound", id)
	}
	return p, nil
}

var defaultRegistry = NewRegistry()

// Bindings returns the process-wide registry. Deployment setup binds
// numeric pin identifiers here before transceivers are configured.
func Bindings() *Registry {
	return defaultRegistry
}
