package bridge

import "src.tmb.sh/pkg/template"

// registry maps identifiers to callbacks for a single template. It is not
// safe for concurrent use; the owning Template serializes all access to it.
type registry struct {
	callbacks map[string]template.Callback
}

func newRegistry() *registry {
	return &registry{callbacks: make(map[string]template.Callback)}
}

// upsert stores cb under id, overwriting any existing entry. Overwriting is
// how a caller replaces the handler at a stable identifier across
// reconfigurations without leaking the old one.
func (r *registry) upsert(id string, cb template.Callback) {
	r.callbacks[id] = cb
}

// prune removes every entry whose identifier is not in alive. It must only
// run after a walk has completed; pruning mid-walk would drop callbacks
// still referenced later in the same tree.
func (r *registry) prune(alive map[string]bool) {
	for id := range r.callbacks {
		if !alive[id] {
			delete(r.callbacks, id)
		}
	}
}

// resolve returns the callback stored under id. A miss is a normal
// occurrence, not an error: the host may deliver events for nodes that a
// later reconfiguration has removed.
func (r *registry) resolve(id string) (template.Callback, bool) {
	cb, ok := r.callbacks[id]
	return cb, ok
}
