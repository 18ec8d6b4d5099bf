package comm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/irtrx.go/pkg/framework"
	"github.com/robotalks/irtrx.go/pkg/l1"
	"github.com/robotalks/irtrx.go/pkg/l1/comm/stream"
	wsrw "github.com/robotalks/irtrx.go/pkg/l1/comm/websocket"
)

// connSet tracks the registrars of live direct connections for event
// fan-out.
type connSet struct {
	lock sync.Mutex
	regs map[*Registrar]struct{}
}

func (s *connSet) add(r *Registrar) {
	s.lock.Lock()
	if s.regs == nil {
		s.regs = make(map[*Registrar]struct{})
	}
	s.regs[r] = struct{}{}
	s.lock.Unlock()
}

func (s *connSet) remove(r *Registrar) {
	s.lock.Lock()
	delete(s.regs, r)
	s.lock.Unlock()
}

// SendEvent implements Registrar, delivering to every live connection.
func (s *connSet) SendEvent(ctx context.Context, msg fx.Message) error {
	s.lock.Lock()
	regs := make([]*Registrar, 0, len(s.regs))
	for r := range s.regs {
		regs = append(regs, r)
	}
	s.lock.Unlock()
	var errs fx.AggregatedError
	for _, r := range regs {
		errs.Add(r.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// serve runs one connection's registrar until it fails, then drops it
// from the set. A connection error only terminates that connection.
func (s *connSet) serve(ctx context.Context, reg *Registrar) {
	s.add(reg)
	defer s.remove(reg)
	if err := fx.RunWithContextCloser(ctx, reg, func() error {
		return reg.Serve(ctx)
	}); err != nil && err != context.Canceled {
		glog.V(1).Infof("connection closed: %v", err)
	}
}

// DirectServer accepts TCP connections speaking length-prefixed packets
// and serves each as a registrar pipe. It implements l1.Registrar by
// fanning events out to all live connections.
type DirectServer struct {
	Address string

	conns connSet
}

// SendEvent implements Registrar.
func (s *DirectServer) SendEvent(ctx context.Context, msg fx.Message) error {
	return s.conns.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (s *DirectServer) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}

// Run implements Runnable.
func (s *DirectServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Address)
	if err != nil {
		return err
	}
	glog.Infof("listening on %s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			reg := &Registrar{}
			reg.Init(stream.New(conn))
			go s.conns.serve(ctx, reg)
		}
	})
}

// WebsocketServer serves the same protocol over websocket.
type WebsocketServer struct {
	Address string
	Path    string

	conns connSet
}

// DefaultWebsocketPath is the endpoint path when none is set.
const DefaultWebsocketPath = "/device"

// SendEvent implements Registrar.
func (s *WebsocketServer) SendEvent(ctx context.Context, msg fx.Message) error {
	return s.conns.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (s *WebsocketServer) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}

// Run implements Runnable.
func (s *WebsocketServer) Run(ctx context.Context) error {
	path := s.Path
	if path == "" {
		path = DefaultWebsocketPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(func(conn *websocket.Conn) {
		reg := &Registrar{}
		reg.Init(wsrw.New(conn))
		// serve synchronously so the websocket handler keeps the
		// connection open
		s.conns.serve(ctx, reg)
	}))
	srv := &http.Server{Addr: s.Address, Handler: mux}
	glog.Infof("listening on ws://%s%s", s.Address, path)
	err := fx.RunWithContextCancel(ctx, func() { srv.Close() }, func() error {
		return srv.ListenAndServe()
	})
	if err == http.ErrServerClosed {
		err = context.Canceled
	}
	return err
}

// ErrNoDiscovery indicates the connector reaches one known endpoint and
// cannot enumerate devices.
var ErrNoDiscovery = errors.New("discovery not supported")

// DirectConnector implements l1.Connector for tcp:// and ws:// endpoints.
type DirectConnector struct {
	URL string
}

// Discover implements Connector.
func (c *DirectConnector) Discover(context.Context) ([]l1.DeviceInfo, error) {
	return nil, ErrNoDiscovery
}

// Connect implements Connector. The device ref is ignored as the
// endpoint already identifies the device.
func (c *DirectConnector) Connect(ctx context.Context, ref l1.DeviceRef) (l1.DeviceConn, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, err
	}
	var rw PacketReadWriter
	switch u.Scheme {
	case "tcp":
		var conn net.Conn
		if conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", u.Host); err != nil {
			return nil, err
		}
		rw = stream.New(conn)
	case "ws", "wss":
		var conn *websocket.Conn
		if conn, err = websocket.Dial(c.URL, "", "http://"+u.Host); err != nil {
			return nil, err
		}
		rw = wsrw.New(conn)
	default:
		return nil, errors.New("unsupported scheme: " + u.Scheme)
	}
	dc := &DeviceConn{}
	dc.Init(rw)
	return dc, nil
}
