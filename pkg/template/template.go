// Package template defines the serializable configuration tree for templates
// rendered by a native host.
//
// A template is a long-lived, addressable UI element whose configuration is
// replaced wholesale on every update. A configuration may embed callbacks in
// its interactive nodes; callbacks never cross the process boundary, so they
// are tagged `json:"-"` and are stripped by the bridge before the
// configuration is pushed to the host (see the bridge package).
package template

// Callback is invoked when the user activates the interactive node it was
// attached to.
type Callback func()

// Action is one activatable entry of a template, such as a row in an action
// list or a navigation trigger.
//
// An Action with an OnPress callback is addressed by its ID when the host
// reports activation. The ID may be left empty, in which case the bridge
// assigns one. An Action with neither ID nor OnPress is plain data and passes
// through the bridge untouched.
type Action struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title,omitempty"`
	OnPress Callback `json:"-"`
}

// MapButton is a button overlaid on a map surface. It is normalized by the
// same rule as Action: it only receives an ID if it has one already or
// carries a callback.
type MapButton struct {
	ID         string   `json:"id,omitempty"`
	Image      string   `json:"image,omitempty"`
	FocusImage string   `json:"focusImage,omitempty"`
	OnPress    Callback `json:"-"`
}

// Button is a bar or grid button. Unlike Action, a Button always carries an
// ID after normalization, even when it has no callback, because the host
// addresses buttons by ID unconditionally.
type Button struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title,omitempty"`
	Image    string   `json:"image,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
	OnPress  Callback `json:"-"`
}

// Pane is an information pane with its own nested action list. Fields other
// than Actions are plain data.
type Pane struct {
	Title   string   `json:"title,omitempty"`
	Rows    []string `json:"rows,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// Config is the full configuration of one template. Every field is optional;
// an absent field stays absent in the serialized form rather than becoming a
// null placeholder.
type Config struct {
	Title          string      `json:"title,omitempty"`
	Actions        []Action    `json:"actions,omitempty"`
	MapButtons     []MapButton `json:"mapButtons,omitempty"`
	NavigateAction *Action     `json:"navigateAction,omitempty"`
	Pane           *Pane       `json:"pane,omitempty"`
	Buttons        []Button    `json:"buttons,omitempty"`
}
