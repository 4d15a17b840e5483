package daemon

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"src.tmb.sh/pkg/host"
	"src.tmb.sh/pkg/store"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
	errNoStore = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInternalError, Message: "storage not available"}
)

// service implements the daemon side of the host protocol for all connected
// clients.
type service struct {
	st store.Store // nil if the database failed to open

	mu      sync.Mutex
	clients map[*jsonrpc2.Conn]struct{}
}

func newService(st store.Store) *service {
	return &service{st: st, clients: make(map[*jsonrpc2.Conn]struct{})}
}

// configureParams mirrors host.ConfigureParams, with the configuration kept
// as raw JSON so that it is recorded exactly as the application sent it.
type configureParams struct {
	Owner  string          `json:"owner"`
	Config json.RawMessage `json:"config"`
}

func (s *service) accept(ctx context.Context, conn net.Conn) {
	c := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{}),
		s.handler())
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	go func() {
		<-c.DisconnectNotify()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()
}

func (s *service) numClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *service) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		// Ignore the error - if we can't close the connection it's because
		// the client has closed it. There is nothing we can do anyway.
		c.Close()
	}
	s.clients = make(map[*jsonrpc2.Conn]struct{})
}

type method func(context.Context, *jsonrpc2.Conn, json.RawMessage) (any, error)

func (s *service) handler() jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"template/configure": s.configure,
		"template/fire":      s.fire,
		"template/snapshot":  s.snapshot,
		"template/history":   s.history,
		"template/owners":    s.owners,
	})
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var raw json.RawMessage
		if req.Params != nil {
			raw = *req.Params
		}
		return fn(ctx, conn, raw)
	})
}

// Handler implementations. These are all called synchronously per
// connection.

func (s *service) configure(_ context.Context, _ *jsonrpc2.Conn, rawParams json.RawMessage) (any, error) {
	var params configureParams
	if json.Unmarshal(rawParams, &params) != nil || params.Owner == "" {
		return nil, errInvalidParams
	}
	if s.st == nil {
		logger.Printf("no storage; dropping configuration of %q", params.Owner)
		return nil, nil
	}
	seq, err := s.st.Add(params.Owner, params.Config)
	if err != nil {
		logger.Printf("failed to record configuration of %q: %v", params.Owner, err)
		return nil, nil
	}
	logger.Printf("recorded configuration #%d of %q", seq, params.Owner)
	return nil, nil
}

func (s *service) fire(ctx context.Context, from *jsonrpc2.Conn, rawParams json.RawMessage) (any, error) {
	var params host.FireParams
	if json.Unmarshal(rawParams, &params) != nil || params.Owner == "" {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	clients := make([]*jsonrpc2.Conn, 0, len(s.clients))
	for c := range s.clients {
		if c != from {
			clients = append(clients, c)
		}
	}
	s.mu.Unlock()
	for _, c := range clients {
		if err := c.Notify(ctx, "template/fire", &params); err != nil {
			logger.Printf("failed to relay fire to a client: %v", err)
		}
	}
	return nil, nil
}

func (s *service) snapshot(_ context.Context, _ *jsonrpc2.Conn, rawParams json.RawMessage) (any, error) {
	var params host.SnapshotParams
	if json.Unmarshal(rawParams, &params) != nil || params.Owner == "" {
		return nil, errInvalidParams
	}
	if s.st == nil {
		return nil, errNoStore
	}
	cfgJSON, err := s.st.Snapshot(params.Owner)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code: jsonrpc2.CodeInvalidRequest, Message: err.Error()}
	}
	return &host.SnapshotResult{Owner: params.Owner, Config: cfgJSON}, nil
}

func (s *service) history(_ context.Context, _ *jsonrpc2.Conn, rawParams json.RawMessage) (any, error) {
	var params host.HistoryParams
	if json.Unmarshal(rawParams, &params) != nil || params.Owner == "" {
		return nil, errInvalidParams
	}
	if s.st == nil {
		return nil, errNoStore
	}
	upto := params.Upto
	if upto <= 0 {
		upto = math.MaxInt
	}
	entries := []host.HistoryEntry{}
	err := s.st.IterateHistory(params.Owner, params.From, upto, func(r store.Record) {
		entries = append(entries, host.HistoryEntry{Seq: r.Seq, Config: r.CfgJSON})
	})
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}
	return entries, nil
}

func (s *service) owners(_ context.Context, _ *jsonrpc2.Conn, _ json.RawMessage) (any, error) {
	if s.st == nil {
		return nil, errNoStore
	}
	owners, err := s.st.Owners()
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}
	if owners == nil {
		owners = []string{}
	}
	return owners, nil
}
