package bridge

import "src.tmb.sh/pkg/template"

// nodeKind classifies an interactive node once, at the point where a raw
// configuration enters the bridge. The normalization logic switches on it
// exhaustively instead of re-inspecting field presence.
type nodeKind int

const (
	// No callback. The node is plain data and passes through unchanged.
	plainNode nodeKind = iota
	// A callback with a caller-supplied identifier.
	boundNode
	// A callback without an identifier; one must be generated.
	anonymousNode
)

func classify(id string, cb template.Callback) nodeKind {
	switch {
	case cb == nil:
		return plainNode
	case id != "":
		return boundNode
	default:
		return anonymousNode
	}
}

// normalizeAction moves the callback out of a copy of the node into reg,
// keyed by the node's identifier; an anonymous node gets a fresh identifier
// first. The second return value is the identifier the callback was
// registered under, or "" if the node carried no callback.
func normalizeAction(a template.Action, reg *registry) (template.Action, string) {
	switch classify(a.ID, a.OnPress) {
	case plainNode:
		return a, ""
	case boundNode:
		// Keep the identifier verbatim. The upsert below overwrites in
		// place, which is how a caller swaps the handler at a stable
		// identifier.
	case anonymousNode:
		a.ID = nextID()
	}
	reg.upsert(a.ID, a.OnPress)
	a.OnPress = nil
	return a, a.ID
}

// normalizeMapButton applies the Action rule to a map button.
func normalizeMapButton(b template.MapButton, reg *registry) (template.MapButton, string) {
	switch classify(b.ID, b.OnPress) {
	case plainNode:
		return b, ""
	case boundNode:
	case anonymousNode:
		b.ID = nextID()
	}
	reg.upsert(b.ID, b.OnPress)
	b.OnPress = nil
	return b, b.ID
}

// normalizeButton differs from normalizeAction in that a button without an
// identifier always gets one: the host addresses buttons by identifier even
// when no callback is attached.
func normalizeButton(b template.Button, reg *registry) (template.Button, string) {
	if b.ID == "" {
		b.ID = nextID()
	}
	if b.OnPress == nil {
		return b, ""
	}
	reg.upsert(b.ID, b.OnPress)
	b.OnPress = nil
	return b, b.ID
}

// walk normalizes every interactive slot of cfg and returns a callback-free
// copy together with the set of identifiers that had callbacks registered
// during this walk. Slot order is preserved; absent slots stay absent. The
// input is never mutated: slices and the pane are shallow-copied before
// their elements are rewritten.
func walk(cfg template.Config, reg *registry) (template.Config, map[string]bool) {
	alive := make(map[string]bool)
	keep := func(id string) {
		if id == "" {
			return
		}
		if alive[id] {
			logger.Printf("duplicate explicit id %q in one configuration; the later callback wins", id)
		}
		alive[id] = true
	}

	if cfg.Actions != nil {
		actions := make([]template.Action, len(cfg.Actions))
		for i, a := range cfg.Actions {
			clean, id := normalizeAction(a, reg)
			actions[i] = clean
			keep(id)
		}
		cfg.Actions = actions
	}
	if cfg.MapButtons != nil {
		buttons := make([]template.MapButton, len(cfg.MapButtons))
		for i, b := range cfg.MapButtons {
			clean, id := normalizeMapButton(b, reg)
			buttons[i] = clean
			keep(id)
		}
		cfg.MapButtons = buttons
	}
	if cfg.NavigateAction != nil {
		clean, id := normalizeAction(*cfg.NavigateAction, reg)
		cfg.NavigateAction = &clean
		keep(id)
	}
	if cfg.Pane != nil {
		pane := *cfg.Pane
		if pane.Actions != nil {
			actions := make([]template.Action, len(pane.Actions))
			for i, a := range pane.Actions {
				clean, id := normalizeAction(a, reg)
				actions[i] = clean
				keep(id)
			}
			pane.Actions = actions
		}
		cfg.Pane = &pane
	}
	if cfg.Buttons != nil {
		buttons := make([]template.Button, len(cfg.Buttons))
		for i, b := range cfg.Buttons {
			clean, id := normalizeButton(b, reg)
			buttons[i] = clean
			keep(id)
		}
		cfg.Buttons = buttons
	}
	return cfg, alive
}
