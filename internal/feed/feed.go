package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/cairnstack/cairn/internal/config"
	"github.com/cairnstack/cairn/internal/keeper"
	"github.com/cairnstack/cairn/pkg/types"
)

const defaultPollTimeout = 10 * time.Second

// Sink receives one candidate observation per extracted metric family.
// *keeper.Keeper satisfies it.
type Sink interface {
	Put(name string, o types.Observation) (accepted bool, err error)
}

// Feed polls a single Prometheus text-exposition endpoint and offers every
// mapped sample to the cache. Rejections are counted but not retried: the
// admission engine already records them in the error log.
type Feed struct {
	cfg    config.FeedConfig
	client *http.Client
	sink   Sink
}

// New builds a Feed with its own HTTP client so per-feed timeouts do not
// interfere with one another.
func New(cfg config.FeedConfig, sink Sink) *Feed {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	return &Feed{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		sink:   sink,
	}
}

// Run polls the endpoint at the configured interval until ctx is cancelled.
// A failed poll is logged and skipped; the next tick tries again.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Poll(ctx); err != nil {
				slog.Warn("feed: poll failed", "feed", f.cfg.ID, "err", err)
			}
		}
	}
}

// Poll performs one fetch-extract-offer cycle.
func (f *Feed) Poll(ctx context.Context) error {
	mfs, err := fetchMetrics(ctx, f.client, f.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("feed %q: %w", f.cfg.ID, err)
	}

	at := time.Now().UTC()
	for _, m := range f.cfg.Metrics {
		mf, ok := mfs[m.Family]
		if !ok {
			slog.Debug("feed: family absent in scrape", "feed", f.cfg.ID, "family", m.Family)
			continue
		}
		scale := m.Scale
		if scale == 0 {
			scale = 1
		}
		o := types.Observation{
			Value: sumFamily(mf) * scale,
			At:    at,
			Feed:  f.cfg.ID,
		}
		accepted, err := f.sink.Put(m.Series, o)
		if err != nil {
			slog.Warn("feed: put failed", "feed", f.cfg.ID, "series", m.Series, "err", err)
			continue
		}
		if !accepted {
			slog.Debug("feed: sample rejected", "feed", f.cfg.ID, "series", m.Series, "value", o.Value)
		}
	}
	return nil
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
func sumFamily(mf *dto.MetricFamily) float64 {
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}

var _ Sink = (*keeper.Keeper)(nil)
