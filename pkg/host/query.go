package host

import (
	"context"
	"encoding/json"
)

// The query methods below are only answered by the bridge daemon, which
// records every pushed configuration. A native host is not required to
// implement them.

// SnapshotParams is the parameter of the "template/snapshot" request.
type SnapshotParams struct {
	Owner string `json:"owner"`
}

// SnapshotResult is the result of the "template/snapshot" request.
type SnapshotResult struct {
	Owner  string          `json:"owner"`
	Config json.RawMessage `json:"config"`
}

// HistoryParams is the parameter of the "template/history" request. Upto <= 0
// means the end of the history.
type HistoryParams struct {
	Owner string `json:"owner"`
	From  int    `json:"from"`
	Upto  int    `json:"upto"`
}

// HistoryEntry is one element of the result of the "template/history"
// request.
type HistoryEntry struct {
	Seq    int             `json:"seq"`
	Config json.RawMessage `json:"config"`
}

// Fire sends a "template/fire" notification, requesting that the callback
// registered under id by the named owner be invoked. It is used by test
// drivers and diagnostic tools; a native host sends the same notification
// when the user activates a node.
func (c *Conn) Fire(owner, id string) error {
	return c.conn.Notify(context.Background(), "template/fire",
		&FireParams{Owner: owner, ID: id})
}

// Snapshot requests the latest recorded configuration of the named owner.
func (c *Conn) Snapshot(ctx context.Context, owner string) (SnapshotResult, error) {
	var result SnapshotResult
	err := c.conn.Call(ctx, "template/snapshot",
		&SnapshotParams{Owner: owner}, &result)
	return result, err
}

// History requests the recorded configuration history of the named owner
// with sequence numbers in [from, upto); upto <= 0 means the end of the
// history.
func (c *Conn) History(ctx context.Context, owner string, from, upto int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := c.conn.Call(ctx, "template/history",
		&HistoryParams{Owner: owner, From: from, Upto: upto}, &entries)
	return entries, err
}

// Owners requests the list of owners with at least one recorded
// configuration.
func (c *Conn) Owners(ctx context.Context) ([]string, error) {
	var owners []string
	err := c.conn.Call(ctx, "template/owners", nil, &owners)
	return owners, err
}
