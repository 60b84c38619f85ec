package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var counter = domain.NewComponent("Counter", func(h domain.Hooks, _ domain.Props) (domain.Element, error) {
	count, setCount := domain.UseState(h, 0)
	return domain.H("button", domain.Props{
		"id": "inc",
		"onClick": func() {
			setCount.Update(func(n int) int { return n + 1 })
		},
	}, count), nil
})

func newTestServer(t *testing.T, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore(), func(ctx context.Context, id string) (runner.Target, error) {
		host := memory.NewHost()
		rt, err := arbor.New(host, arbor.WithName(id))
		if err != nil {
			return nil, err
		}
		rt.Render(domain.C(counter, nil), host.NewContainer())
		return rt, nil
	})
	s := NewServer(mgr, opts...)
	return s, s.Routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSessionLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/sessions", OpenRequest{ID: "c1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var opened FrameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	assert.Equal(t, "c1", opened.ID)
	assert.Equal(t, "0", opened.Tree.TextContent())

	w = do(t, h, "POST", "/sessions/c1/events", EventRequest{Target: "inc", Event: "click"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var frame FrameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frame))
	assert.Equal(t, "1", frame.Tree.TextContent())
	assert.Equal(t, 1, frame.Report.Patched())

	w = do(t, h, "GET", "/sessions/c1/markup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `<button id="inc">1</button>`, w.Body.String())

	w = do(t, h, "GET", "/sessions/c1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "1", snap.TextContent())

	w = do(t, h, "GET", "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list SessionList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"c1"}, list.Live)
	assert.Equal(t, []string{"c1"}, list.Stored)

	w = do(t, h, "DELETE", "/sessions/c1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/sessions/c1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenSession_GeneratedID(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var opened FrameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	assert.Len(t, opened.ID, 36)
}

func TestDispatch_Errors(t *testing.T) {
	_, h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/sessions", OpenRequest{ID: "c1"}).Code)

	tests := []struct {
		name string
		path string
		body any
		code int
	}{
		{"Unknown Session", "/sessions/absent/events", EventRequest{Target: "inc", Event: "click"}, http.StatusNotFound},
		{"No Listener", "/sessions/c1/events", EventRequest{Target: "inc", Event: "keydown"}, http.StatusNotFound},
		{"Missing Target", "/sessions/c1/events", EventRequest{Event: "click"}, http.StatusBadRequest},
		{"Bad Body", "/sessions/c1/events", "not an object", http.StatusBadRequest},
		{"Control Characters", "/sessions/c1/events", EventRequest{Target: "inc", Event: "click", Payload: "a\x1b[2Jb"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestListViews(t *testing.T) {
	_, bare := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, bare, "GET", "/views", nil).Code)

	loader := memory.NewLoader(map[string]domain.Element{
		"home":  domain.H("main", nil),
		"about": domain.H("main", nil),
	})
	_, h := newTestServer(t, WithViews(loader))
	w := do(t, h, "GET", "/views", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ids []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.Equal(t, []string{"about", "home"}, ids)
}

func TestHealthInfoAndCORS(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	assert.Contains(t, w.Body.String(), strings.TrimSpace(arbor.Version))

	w = do(t, h, "OPTIONS", "/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "arbor_test_hits_total", Help: "test"})
	reg.MustRegister(hits)
	hits.Inc()

	_, h := newTestServer(t, WithGatherer(reg))
	w := do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arbor_test_hits_total 1")

	_, bare := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, bare, "GET", "/metrics", nil).Code)
}

func TestSubscribeEvents_Session(t *testing.T) {
	s, h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/sessions", OpenRequest{ID: "c1"}).Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?session_id=c1", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(wSub, reqSub)
	}()

	require.Eventually(t, func() bool { return s.Streams.Subscribers("c1") == 1 }, time.Second, 5*time.Millisecond)

	w := do(t, h, "POST", "/sessions/c1/events", EventRequest{Target: "inc", Event: "click"})
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, "event: commit")
	assert.Contains(t, output, `"tag":"UPDATE"`)
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	_, h := newTestServer(t)
	w := do(t, h, "GET", "/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatch_ConcurrentFramesAreDistinct(t *testing.T) {
	_, h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/sessions", OpenRequest{ID: "c1"}).Code)

	const workers, clicks = 8, 20
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range clicks {
				req := httptest.NewRequest("POST", "/sessions/c1/events", strings.NewReader(`{"target":"inc","event":"click"}`))
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				if !assert.Equal(t, http.StatusOK, w.Code, w.Body.String()) {
					return
				}
				var frame FrameResponse
				if !assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &frame)) {
					return
				}
				assert.Equal(t, 1, frame.Report.Patched())
				mu.Lock()
				seen[frame.Tree.TextContent()] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every response saw the tree left by its own click.
	assert.Len(t, seen, workers*clicks)
	for n := 1; n <= workers*clicks; n++ {
		assert.True(t, seen[strconv.Itoa(n)], "missing frame %d", n)
	}
}
