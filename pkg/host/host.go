// Package host implements the JSON-RPC transport between templates and the
// native host, and its client.
//
// The protocol consists of two notifications. The application side sends
// "template/configure", carrying an owner name and that owner's callback-free
// configuration; the host side sends "template/fire", carrying an owner name
// and the identifier of the activated node. Neither side waits for a reply.
package host

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"src.tmb.sh/pkg/logutil"
	"src.tmb.sh/pkg/template"
)

var logger = logutil.GetLogger("[host] ")

// ConfigureParams is the parameter of the "template/configure" notification.
type ConfigureParams struct {
	Owner  string          `json:"owner"`
	Config template.Config `json:"config"`
}

// FireParams is the parameter of the "template/fire" notification.
type FireParams struct {
	Owner string `json:"owner"`
	ID    string `json:"id"`
}

// Conn is the application's connection to the host. It implements
// bridge.Host: pushes travel out as "template/configure" notifications, and
// inbound "template/fire" notifications are demultiplexed to the subscribed
// owner.
type Conn struct {
	conn *jsonrpc2.Conn

	mu     sync.Mutex
	owners map[string]func(id string)
}

// NewConn creates a Conn over the given stream, which carries JSON-RPC
// messages framed with Content-Length headers.
func NewConn(ctx context.Context, stream io.ReadWriteCloser) *Conn {
	c := &Conn{owners: make(map[string]func(string))}
	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(c.handle))
	return c
}

// Dial connects to the host's unix socket.
func Dial(ctx context.Context, sockpath string) (*Conn, error) {
	conn, err := net.Dial("unix", sockpath)
	if err != nil {
		return nil, err
	}
	return NewConn(ctx, conn), nil
}

// Push implements bridge.Host.
func (c *Conn) Push(owner string, cfg template.Config) error {
	return c.conn.Notify(context.Background(), "template/configure",
		&ConfigureParams{Owner: owner, Config: cfg})
}

// Subscribe implements bridge.Host. It routes fire events addressed to owner
// to h. Subscribing again under the same owner replaces the previous
// handler.
func (c *Conn) Subscribe(owner string, h func(id string)) (cancel func()) {
	c.mu.Lock()
	c.owners[owner] = h
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.owners, owner)
		c.mu.Unlock()
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// DisconnectNotify returns a channel that is closed when the connection
// terminates.
func (c *Conn) DisconnectNotify() <-chan struct{} { return c.conn.DisconnectNotify() }

func (c *Conn) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	if req.Method != "template/fire" {
		return nil, &jsonrpc2.Error{
			Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	}
	var params FireParams
	if req.Params == nil || json.Unmarshal(*req.Params, &params) != nil {
		return nil, &jsonrpc2.Error{
			Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
	}
	c.mu.Lock()
	h, ok := c.owners[params.Owner]
	c.mu.Unlock()
	if !ok {
		// Same tolerance as unknown identifiers: the fire may target an
		// owner that has since been closed.
		logger.Printf("dropping fire for unknown owner %q", params.Owner)
		return nil, nil
	}
	h(params.ID)
	return nil, nil
}
