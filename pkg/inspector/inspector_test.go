package inspector

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	promobs "github.com/taskpoolio/taskpool/pkg/observability/prometheus"
	"github.com/taskpoolio/taskpool/pkg/pool"
)

func setupInspector(t *testing.T) (*pool.Pool, *fasthttp.Client) {
	t.Helper()

	p, err := pool.New(pool.Config{Workers: 2, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("pool.New() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })

	reg := prom.NewRegistry()
	if err := reg.Register(promobs.NewPoolCollector(p)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	insp := New(":0", p, reg)
	ln := fasthttputil.NewInmemoryListener()
	go insp.Serve(ln) //nolint:errcheck // returns when the listener closes

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		insp.Stop(ctx)
		ln.Close()
	})

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}
	return p, client
}

func TestInspector_Status(t *testing.T) {
	p, client := setupInspector(t)

	for i := 0; i < 4; i++ {
		p.Submit(pool.TaskFunc(func() error { return nil }))
	}
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	code, body, err := client.Get(nil, "http://inspector/status")
	if err != nil {
		t.Fatalf("GET /status error = %v", err)
	}
	if code != fasthttp.StatusOK {
		t.Fatalf("GET /status code = %d, want 200", code)
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	if !status.Accepting {
		t.Error("status.Accepting = false, want true")
	}
	if status.Stats.Completed != 4 {
		t.Errorf("status.Stats.Completed = %d, want 4", status.Stats.Completed)
	}
}

func TestInspector_Metrics(t *testing.T) {
	p, client := setupInspector(t)

	p.Submit(pool.TaskFunc(func() error { return nil }))
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	code, body, err := client.Get(nil, "http://inspector/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	if code != fasthttp.StatusOK {
		t.Fatalf("GET /metrics code = %d, want 200", code)
	}
	if !strings.Contains(string(body), "taskpool_tasks_completed_total") {
		t.Errorf("metrics output missing pool counters:\n%s", body)
	}
}

func TestInspector_NotFound(t *testing.T) {
	_, client := setupInspector(t)

	code, _, err := client.Get(nil, "http://inspector/nope")
	if err != nil {
		t.Fatalf("GET /nope error = %v", err)
	}
	if code != fasthttp.StatusNotFound {
		t.Errorf("GET /nope code = %d, want 404", code)
	}
}
