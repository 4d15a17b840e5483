package host

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sourcegraph/jsonrpc2"
	"src.tmb.sh/pkg/template"
)

// hostEnd plays the native host on the far side of a net.Pipe.
type hostEnd struct {
	conn       *jsonrpc2.Conn
	configures chan ConfigureParams
}

func setup(t *testing.T) (*Conn, *hostEnd) {
	t.Helper()
	clientSide, hostSide := net.Pipe()
	ctx := context.Background()
	c := NewConn(ctx, clientSide)
	h := &hostEnd{configures: make(chan ConfigureParams, 8)}
	h.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(hostSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(h.handle))
	t.Cleanup(func() {
		c.Close()
		h.conn.Close()
	})
	return c, h
}

func (h *hostEnd) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	if req.Method != "template/configure" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound}
	}
	var params ConfigureParams
	if req.Params == nil || json.Unmarshal(*req.Params, &params) != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}
	h.configures <- params
	return nil, nil
}

func (h *hostEnd) fire(owner, id string) {
	h.conn.Notify(context.Background(), "template/fire",
		&FireParams{Owner: owner, ID: id})
}

func recvConfigure(t *testing.T, h *hostEnd) ConfigureParams {
	t.Helper()
	select {
	case params := <-h.configures:
		return params
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for configure notification")
		panic("unreachable")
	}
}

func recvFire(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for fire event")
		panic("unreachable")
	}
}

const testTimeout = 5 * time.Second

func TestPush(t *testing.T) {
	c, h := setup(t)
	err := c.Push("list", template.Config{
		Title:   "Choices",
		Actions: []template.Action{{ID: "a", Title: "A"}},
	})
	if err != nil {
		t.Fatalf("Push -> error %v", err)
	}
	got := recvConfigure(t, h)
	if got.Owner != "list" {
		t.Errorf("configure addressed to %q, want %q", got.Owner, "list")
	}
	want := template.Config{
		Title:   "Choices",
		Actions: []template.Action{{ID: "a", Title: "A"}},
	}
	if diff := cmp.Diff(want, got.Config); diff != "" {
		t.Errorf("configure config (-want +got):\n%s", diff)
	}
}

func TestFire_RoutedToSubscribedOwner(t *testing.T) {
	c, h := setup(t)
	fired := make(chan string, 1)
	c.Subscribe("list", func(id string) { fired <- id })
	h.fire("list", "x")
	if id := recvFire(t, fired); id != "x" {
		t.Errorf("fire delivered id %q, want %q", id, "x")
	}
}

func TestFire_UnknownOwnerIsDropped(t *testing.T) {
	c, h := setup(t)
	fired := make(chan string, 1)
	c.Subscribe("list", func(id string) { fired <- id })
	// The fire for the unsubscribed owner must be dropped without breaking
	// the connection; the next fire still arrives.
	h.fire("ghost", "x")
	h.fire("list", "y")
	if id := recvFire(t, fired); id != "y" {
		t.Errorf("fire delivered id %q, want %q", id, "y")
	}
}

func TestSubscribe_CancelStopsDelivery(t *testing.T) {
	c, h := setup(t)
	listFired := make(chan string, 1)
	gridFired := make(chan string, 1)
	cancel := c.Subscribe("list", func(id string) { listFired <- id })
	c.Subscribe("grid", func(id string) { gridFired <- id })
	cancel()
	h.fire("list", "x")
	h.fire("grid", "y")
	// Fires are delivered in order, so once the grid fire has arrived the
	// cancelled list fire is known to have been dropped.
	if id := recvFire(t, gridFired); id != "y" {
		t.Errorf("fire delivered id %q, want %q", id, "y")
	}
	select {
	case id := <-listFired:
		t.Errorf("cancelled subscription still received fire %q", id)
	default:
	}
}
