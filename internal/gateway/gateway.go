package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/smallbiznis/fieldbill/internal/clock"
	"github.com/smallbiznis/fieldbill/internal/config"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	obsmetrics "github.com/smallbiznis/fieldbill/internal/observability/metrics"
	"github.com/smallbiznis/fieldbill/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DrainState is the queue worker's lifecycle. At most one drain loop
// runs at a time; an enqueue during an active drain piggybacks on it.
type DrainState int32

const (
	StateIdle DrainState = iota
	StateDraining
)

// Reply is a dispatched call's raw outcome. Typed decoding happens in
// the API layer so queued and bypass calls share the same plumbing.
type Reply struct {
	Status int
	Body   []byte
}

type task struct {
	method     string
	path       string
	body       any
	enqueuedAt time.Time
	done       chan taskResult
}

type taskResult struct {
	reply Reply
	err   error
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Creds   credsdomain.Service
	Holder  *config.GatewayConfigHolder
	Client  *http.Client               `optional:"true"`
	Metrics *obsmetrics.GatewayMetrics `optional:"true"`
}

// Gateway serializes outbound calls to the payment platform through a
// single paced FIFO queue. Credentials and tuning are resolved at
// dispatch time, so changes made while requests are queued are honored
// for not-yet-dispatched requests.
type Gateway struct {
	log     *zap.Logger
	clock   clock.Clock
	creds   credsdomain.Service
	holder  *config.GatewayConfigHolder
	client  *http.Client
	pacer   *ratelimit.Pacer
	metrics *obsmetrics.GatewayMetrics

	mu    sync.Mutex
	queue []*task
	state DrainState
}

func New(p Params) *Gateway {
	client := p.Client
	if client == nil {
		client = &http.Client{}
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = obsmetrics.Gateway()
	}
	return &Gateway{
		log:     p.Log.Named("gateway"),
		clock:   p.Clock,
		creds:   p.Creds,
		holder:  p.Holder,
		client:  client,
		pacer:   ratelimit.NewPacer(p.Holder.Get().MaxRequestsPerSecond),
		metrics: metrics,
	}
}

// Enqueue appends a call to the outbound queue and blocks until it has
// been dispatched. Queued calls dispatch in FIFO order, each separated
// by at least the minimum inter-request interval. Cancelling ctx
// abandons the wait but does not revoke the queued request.
func (g *Gateway) Enqueue(ctx context.Context, method, path string, body any) (Reply, error) {
	t := &task{
		method:     method,
		path:       path,
		body:       body,
		enqueuedAt: g.clock.Now(),
		done:       make(chan taskResult, 1),
	}

	g.mu.Lock()
	g.queue = append(g.queue, t)
	g.metrics.SetQueueDepth(len(g.queue))
	start := g.state == StateIdle
	if start {
		g.state = StateDraining
	}
	g.mu.Unlock()

	if start {
		go g.drain()
	}

	select {
	case res := <-t.done:
		return res.reply, res.err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Call dispatches immediately, bypassing the queue. Used for
// latency-sensitive, order-independent operations that manage their own
// pacing.
func (g *Gateway) Call(ctx context.Context, method, path string, body any) (Reply, error) {
	reply, err := g.do(ctx, method, path, body)
	if err != nil {
		g.metrics.IncDispatch("error")
		return reply, err
	}
	g.metrics.IncDispatch("ok")
	return reply, nil
}

// State reports whether the drain loop is active.
func (g *Gateway) State() DrainState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// QueueLen reports the number of requests waiting for dispatch.
func (g *Gateway) QueueLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// drain pops tasks in FIFO order until the queue empties, pacing every
// dispatch. A failed request rejects only its own waiter; the loop keeps
// going. Dispatch uses a background context because queued requests are
// not revocable once accepted.
func (g *Gateway) drain() {
	ctx := context.Background()
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			g.state = StateIdle
			g.mu.Unlock()
			g.metrics.SetQueueDepth(0)
			return
		}
		t := g.queue[0]
		g.queue = g.queue[1:]
		depth := len(g.queue)
		g.mu.Unlock()
		g.metrics.SetQueueDepth(depth)

		g.pacer.SetRate(g.holder.Get().MaxRequestsPerSecond)
		if wait := g.pacer.Reserve(g.clock.Now()); wait > 0 {
			_ = g.clock.Sleep(ctx, wait)
		}
		g.metrics.ObserveQueueWait(g.clock.Now().Sub(t.enqueuedAt))

		reply, err := g.do(ctx, t.method, t.path, t.body)
		if err != nil {
			g.metrics.IncDispatch("error")
			g.log.Warn("queued dispatch failed",
				zap.String("method", t.method),
				zap.String("path", t.path),
				zap.Error(err),
			)
		} else {
			g.metrics.IncDispatch("ok")
		}
		t.done <- taskResult{reply: reply, err: err}
	}
}

func (g *Gateway) do(ctx context.Context, method, path string, body any) (Reply, error) {
	creds, err := g.creds.Get(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("resolve credentials: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Reply{}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	ctx, cancel := context.WithTimeout(ctx, g.holder.Get().RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, creds.APIBaseURL+path, reader)
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("requestToken", creds.APIToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("dispatch %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read response: %w", err)
	}
	return Reply{Status: resp.StatusCode, Body: raw}, nil
}
