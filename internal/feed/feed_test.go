package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cairnstack/cairn/internal/config"
	"github.com/cairnstack/cairn/pkg/types"
)

// nodeMetrics is a realistic subset of a node exporter's /metrics output.
const nodeMetrics = `
# HELP node_load1 1m load average.
# TYPE node_load1 gauge
node_load1 0.42

# HELP node_memory_Active_bytes Memory information field Active_bytes.
# TYPE node_memory_Active_bytes gauge
node_memory_Active_bytes 2.1e+09

# HELP node_network_receive_bytes_total Network device statistic receive_bytes.
# TYPE node_network_receive_bytes_total counter
node_network_receive_bytes_total{device="eth0"} 1000
node_network_receive_bytes_total{device="eth1"} 500
`

type captureSink struct {
	puts map[string][]types.Observation
}

func (s *captureSink) Put(name string, o types.Observation) (bool, error) {
	if s.puts == nil {
		s.puts = make(map[string][]types.Observation)
	}
	s.puts[name] = append(s.puts[name], o)
	return true, nil
}

func TestPoll_MapsFamiliesToSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(nodeMetrics))
	}))
	defer srv.Close()

	sink := &captureSink{}
	f := New(config.FeedConfig{
		ID:       "node",
		Endpoint: srv.URL,
		Metrics: []config.MetricMapping{
			{Family: "node_load1", Series: "load"},
			{Family: "node_network_receive_bytes_total", Series: "net_rx"},
			{Family: "node_memory_Active_bytes", Series: "mem_mb", Scale: 1e-6},
		},
	}, sink)

	if err := f.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if got := sink.puts["load"]; len(got) != 1 || got[0].Value != 0.42 {
		t.Errorf("load: got %v, want one sample of 0.42", got)
	}
	// Counter values are summed across label sets.
	if got := sink.puts["net_rx"]; len(got) != 1 || got[0].Value != 1500 {
		t.Errorf("net_rx: got %v, want one sample of 1500", got)
	}
	if got := sink.puts["mem_mb"]; len(got) != 1 || got[0].Value != 2100 {
		t.Errorf("mem_mb: got %v, want one scaled sample of 2100", got)
	}
	if got := sink.puts["load"][0].Feed; got != "node" {
		t.Errorf("observation feed = %q, want %q", got, "node")
	}
}

func TestPoll_SkipsAbsentFamilies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("node_load1 0.5\n"))
	}))
	defer srv.Close()

	sink := &captureSink{}
	f := New(config.FeedConfig{
		ID:       "node",
		Endpoint: srv.URL,
		Metrics: []config.MetricMapping{
			{Family: "node_load1", Series: "load"},
			{Family: "nonexistent_family", Series: "ghost"},
		},
	}, sink)

	if err := f.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if _, ok := sink.puts["ghost"]; ok {
		t.Error("absent family should not produce a sample")
	}
	if len(sink.puts["load"]) != 1 {
		t.Errorf("present family should produce a sample, got %v", sink.puts)
	}
}

func TestPoll_EndpointDown(t *testing.T) {
	f := New(config.FeedConfig{ID: "down", Endpoint: "http://127.0.0.1:1"}, &captureSink{})
	if err := f.Poll(context.Background()); err == nil {
		t.Fatal("Poll() against an unreachable endpoint should error")
	}
}

func TestPoll_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(config.FeedConfig{ID: "erring", Endpoint: srv.URL}, &captureSink{})
	if err := f.Poll(context.Background()); err == nil {
		t.Fatal("Poll() against a 503 endpoint should error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("node_load1 0.5\n"))
	}))
	defer srv.Close()

	f := New(config.FeedConfig{
		ID:       "node",
		Endpoint: srv.URL,
		Interval: 5 * time.Millisecond,
		Metrics:  []config.MetricMapping{{Family: "node_load1", Series: "load"}},
	}, &captureSink{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
