// Package inspector provides an HTTP endpoint for observing a live pool:
// /status serves a JSON snapshot, /metrics the Prometheus exposition.
package inspector

import (
	"context"
	"encoding/json"
	"net"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	promobs "github.com/taskpoolio/taskpool/pkg/observability/prometheus"
	"github.com/taskpoolio/taskpool/pkg/pool"
)

// Status is the JSON document served by /status
type Status struct {
	Accepting  bool       `json:"accepting"`
	Terminated bool       `json:"terminated"`
	Stats      pool.Stats `json:"stats"`
}

// Inspector serves pool status and metrics over HTTP
type Inspector struct {
	pool     *pool.Pool
	gatherer prom.Gatherer
	addr     string
	server   *fasthttp.Server
	ln       net.Listener
}

// New creates an Inspector for p. A nil gatherer disables /metrics.
func New(addr string, p *pool.Pool, gatherer prom.Gatherer) *Inspector {
	i := &Inspector{
		pool:     p,
		gatherer: gatherer,
		addr:     addr,
	}
	i.server = &fasthttp.Server{
		Handler: i.handle,
		Name:    "taskpool-inspector",
	}
	return i
}

// Start listens on the configured address and serves until Stop
func (i *Inspector) Start() error {
	ln, err := net.Listen("tcp", i.addr)
	if err != nil {
		return err
	}
	i.ln = ln
	go i.server.Serve(ln) //nolint:errcheck // Serve returns on Shutdown
	return nil
}

// Serve serves on the given listener, blocking until the listener closes.
// Useful for tests and callers managing their own sockets.
func (i *Inspector) Serve(ln net.Listener) error {
	i.ln = ln
	return i.server.Serve(ln)
}

// Addr returns the bound listener address, or the configured one before Start
func (i *Inspector) Addr() string {
	if i.ln != nil {
		return i.ln.Addr().String()
	}
	return i.addr
}

// Stop gracefully shuts down the server
func (i *Inspector) Stop(ctx context.Context) error {
	return i.server.ShutdownWithContext(ctx)
}

func (i *Inspector) handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/status":
		i.handleStatus(ctx)
	case "/metrics":
		i.handleMetrics(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (i *Inspector) handleStatus(ctx *fasthttp.RequestCtx) {
	status := Status{
		Accepting:  i.pool.Accepting(),
		Terminated: i.pool.Terminated(),
		Stats:      i.pool.Stats(),
	}

	body, err := json.Marshal(status)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func (i *Inspector) handleMetrics(ctx *fasthttp.RequestCtx) {
	if i.gatherer == nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}

	body, err := promobs.Render(i.gatherer)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("text/plain; version=0.0.4; charset=utf-8")
	ctx.SetBody(body)
}
