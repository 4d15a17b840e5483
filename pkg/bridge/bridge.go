// Package bridge reconciles callback identity between template
// configurations and an identifier-addressed host.
//
// A configuration tree (see the template package) may embed callbacks, but
// the host only accepts plain serializable data. On every Configure call the
// bridge walks the tree, moves each callback into a per-template registry
// under a stable string identifier, strips it from the outgoing
// configuration, and prunes registry entries that the new configuration no
// longer references. When the host later reports activation of a node, the
// fire event carries only the identifier; the bridge resolves it against the
// registry and invokes the callback.
//
// Each Template exclusively owns its registry, so identifiers from different
// templates can never collide with each other.
package bridge

import (
	"errors"
	"fmt"
	"sync"

	"src.tmb.sh/pkg/logutil"
	"src.tmb.sh/pkg/template"
)

var logger = logutil.GetLogger("[bridge] ")

// ErrClosed is returned by Configure after the template has been closed.
var ErrClosed = errors.New("template closed")

// Host is the transport-side collaborator of a Template. Push sends a
// callback-free configuration to the host. Subscribe arranges for fire
// events addressed to the named owner to be delivered to h until the
// returned cancel function is called.
type Host interface {
	Push(owner string, cfg template.Config) error
	Subscribe(owner string, h func(id string)) (cancel func())
}

// Template is a configuration owner: a long-lived addressable UI element
// whose configuration is replaced wholesale by each Configure call.
type Template struct {
	name   string
	host   Host
	cancel func()

	// mu serializes reconfiguration against fire dispatch, so that the
	// upsert/prune sequence of one Configure call is fully applied before
	// any later fire event resolves against the registry.
	mu         sync.Mutex
	reg        *registry
	clean      template.Config
	configured bool
	closed     bool
}

// New creates a Template with the given name. If host is non-nil, the
// template subscribes to the host's fire feed at construction; Close
// releases the subscription. A nil host is allowed and makes Configure skip
// the push, which is useful for tests and for offline diagnostics.
func New(name string, host Host) *Template {
	t := &Template{name: name, host: host, reg: newRegistry()}
	if host != nil {
		t.cancel = host.Subscribe(name, t.HandleFire)
	}
	return t
}

// Name returns the owner name the template was created with.
func (t *Template) Name() string { return t.name }

// Configure replaces the template's configuration. It moves every callback
// in cfg into the template's registry, prunes entries that the new
// configuration no longer references, pushes the callback-free configuration
// to the host, and returns it.
//
// Calling Configure again is the sole mechanism for updating handlers: a
// callback at an identifier already in the registry replaces the old one,
// and identifiers absent from the new configuration are forgotten.
func (t *Template) Configure(cfg template.Config) (template.Config, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return template.Config{}, ErrClosed
	}
	clean, alive := walk(cfg, t.reg)
	t.reg.prune(alive)
	t.clean = clean
	t.configured = true
	if t.host != nil {
		if err := t.host.Push(t.name, clean); err != nil {
			return clean, fmt.Errorf("push %s: %w", t.name, err)
		}
	}
	return clean, nil
}

// HandleFire resolves a fire event against the registry and invokes the
// callback synchronously. Unknown identifiers are dropped: the host may
// legitimately deliver events for nodes that were reconfigured away while
// the event was in flight.
func (t *Template) HandleFire(id string) {
	t.mu.Lock()
	cb, ok := t.reg.resolve(id)
	t.mu.Unlock()
	if !ok {
		logger.Printf("template %s: dropping fire for unknown id %q", t.name, id)
		return
	}
	cb()
}

// Clean returns the callback-free configuration produced by the latest
// Configure call. The second return value is false if Configure has never
// completed.
func (t *Template) Clean() (template.Config, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clean, t.configured
}

// Close releases the fire subscription and drops all registered callbacks.
// Fire events arriving after Close are ignored.
func (t *Template) Close() {
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.reg = newRegistry()
}
