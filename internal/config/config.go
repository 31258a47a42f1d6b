package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cairnstack/cairn/pkg/series"
	"github.com/cairnstack/cairn/pkg/types"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultBroadcastInterval = 5 * time.Second
	DefaultPurgeInterval     = time.Minute
	DefaultFeedInterval      = 15 * time.Second
)

// Config is the top-level configuration for cairnd, loaded from one YAML
// file.
type Config struct {
	// Defaults are the engine-wide fallback limits for series declarations.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Series declares the cache schema: one entry per series.
	Series []SeriesConfig `yaml:"series"`

	// Feeds lists the Prometheus metric endpoints observations are pulled from.
	Feeds []FeedConfig `yaml:"feeds"`

	// Server holds the HTTP/WebSocket settings.
	Server ServerConfig `yaml:"server"`

	// PurgeInterval controls how often previously-admitted values are
	// re-validated and expired.
	PurgeInterval time.Duration `yaml:"purge_interval"`

	// Alerts holds cache-quality alert rules and webhook targets.
	Alerts AlertsConfig `yaml:"alerts"`

	// Overrides are per-series policy field overrides (threshold, limit,
	// errors) applied at runtime through container metadata. This is the
	// hot-reloadable part of the file.
	Overrides map[string]map[string]any `yaml:"overrides"`
}

// DefaultsConfig mirrors series.Defaults in the config file.
type DefaultsConfig struct {
	Limit  int `yaml:"limit"`
	Errors int `yaml:"errors"`
}

// SeriesConfig declares one cache series and its admission policy.
type SeriesConfig struct {
	// Name is the unique series identifier.
	Name string `yaml:"name"`

	// Limit is the maximum number of admitted values retained. 0 uses the
	// engine default.
	Limit int `yaml:"limit"`

	// Errors is the maximum number of rejected values retained. 0 uses the
	// engine default.
	Errors int `yaml:"errors"`

	// Order is the retention order: asc | desc | stack (default stack).
	Order string `yaml:"order"`

	// Threshold is the outlier band fraction; nil disables the band.
	Threshold *float64 `yaml:"threshold"`

	// Min and Max bound admissible values; nil leaves the side open.
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`

	// MaxAge expires admitted values older than this on purge. 0 keeps
	// values until evicted by the limit.
	MaxAge time.Duration `yaml:"max_age"`
}

// FeedConfig describes one polled metrics endpoint.
type FeedConfig struct {
	// ID is a unique, human-readable identifier for this feed.
	ID string `yaml:"id"`

	// Endpoint is the full URL of the Prometheus text exposition endpoint.
	Endpoint string `yaml:"endpoint"`

	// Interval controls how often the endpoint is polled.
	Interval time.Duration `yaml:"interval"`

	// Timeout bounds one poll. 0 uses the feed default.
	Timeout time.Duration `yaml:"timeout"`

	// Metrics maps scraped metric families onto cache series.
	Metrics []MetricMapping `yaml:"metrics"`
}

// MetricMapping routes one metric family into one series.
type MetricMapping struct {
	// Family is the Prometheus metric family name to extract.
	Family string `yaml:"family"`

	// Series is the destination series name.
	Series string `yaml:"series"`

	// Scale multiplies the sampled value before admission (e.g. 1000 to
	// store seconds as milliseconds). 0 means 1.
	Scale float64 `yaml:"scale"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often the WebSocket hub pushes the
	// current snapshot to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// AlertsConfig holds all alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines a threshold-based alert on one series' cache statistics.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Series is the series the rule watches; empty watches every series.
	Series string `yaml:"series"`

	// Condition is an expression like "rejects > 10" or "fill < 3".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	for i := range cfg.Feeds {
		if cfg.Feeds[i].Interval <= 0 {
			cfg.Feeds[i].Interval = DefaultFeedInterval
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
		},
		PurgeInterval: DefaultPurgeInterval,
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if len(cfg.Series) == 0 {
		return fmt.Errorf("at least one series must be declared")
	}

	names := make(map[string]struct{}, len(cfg.Series))
	for i, s := range cfg.Series {
		if s.Name == "" {
			return fmt.Errorf("series[%d]: name is required", i)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("series[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = struct{}{}

		switch s.Order {
		case "", "stack", "asc", "desc":
		default:
			return fmt.Errorf("series %q: unknown order %q", s.Name, s.Order)
		}
		if s.Limit < 0 {
			return fmt.Errorf("series %q: limit must be non-negative", s.Name)
		}
		if s.Threshold != nil && *s.Threshold < 0 {
			return fmt.Errorf("series %q: threshold must be non-negative", s.Name)
		}
		if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
			return fmt.Errorf("series %q: min exceeds max", s.Name)
		}
	}

	for i, f := range cfg.Feeds {
		if f.ID == "" {
			return fmt.Errorf("feeds[%d]: id is required", i)
		}
		if f.Endpoint == "" {
			return fmt.Errorf("feeds[%d] %q: endpoint is required", i, f.ID)
		}
		for _, m := range f.Metrics {
			if m.Family == "" {
				return fmt.Errorf("feed %q: metric family is required", f.ID)
			}
			if _, ok := names[m.Series]; !ok {
				return fmt.Errorf("feed %q: metric %q targets undeclared series %q",
					f.ID, m.Family, m.Series)
			}
		}
	}

	for name := range cfg.Overrides {
		if _, ok := names[name]; !ok {
			return fmt.Errorf("overrides: undeclared series %q", name)
		}
	}

	for i, r := range cfg.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if r.Condition == "" {
			return fmt.Errorf("alert %q: condition is required", r.Name)
		}
		if r.Series != "" {
			if _, ok := names[r.Series]; !ok {
				return fmt.Errorf("alert %q: undeclared series %q", r.Name, r.Series)
			}
		}
	}

	return nil
}

// Schema compiles the declared series into the cache schema. The daemon
// stores timestamped observations so that age-based purging works; min/max
// bounds become the admission validator over the observed value.
func (cfg *Config) Schema() *series.Schema[types.Observation] {
	decls := make([]series.Decl[types.Observation], 0, len(cfg.Series))
	for _, sc := range cfg.Series {
		opts := []series.Option[types.Observation]{
			series.CompareBy[types.Observation](func(o types.Observation) float64 { return o.Value }),
		}
		if sc.Limit > 0 {
			opts = append(opts, series.Limit[types.Observation](sc.Limit))
		}
		if sc.Errors > 0 {
			opts = append(opts, series.Errors[types.Observation](sc.Errors))
		}
		switch sc.Order {
		case "asc":
			opts = append(opts, series.OrderBy[types.Observation](series.Asc))
		case "desc":
			opts = append(opts, series.OrderBy[types.Observation](series.Desc))
		}
		if sc.Threshold != nil {
			opts = append(opts, series.Threshold[types.Observation](*sc.Threshold))
		}
		if v := sc.validator(); v != nil {
			opts = append(opts, series.Validate(v))
		}
		decls = append(decls, series.Declare(sc.Name, opts...))
	}
	return series.NewSchema(series.Defaults{
		Limit:      cfg.Defaults.Limit,
		ErrorLimit: cfg.Defaults.Errors,
	}, decls...)
}

// validator builds the admission gate from the declared bounds and maximum
// age. Returns nil when the series accepts everything.
func (sc SeriesConfig) validator() func(string, types.Observation) bool {
	if sc.Min == nil && sc.Max == nil && sc.MaxAge == 0 {
		return nil
	}
	min, max, maxAge := sc.Min, sc.Max, sc.MaxAge
	return func(_ string, o types.Observation) bool {
		if min != nil && o.Value < *min {
			return false
		}
		if max != nil && o.Value > *max {
			return false
		}
		if maxAge > 0 && time.Since(o.At) > maxAge {
			return false
		}
		return true
	}
}

// OverrideMeta returns the override block as container metadata, nested under
// the runtime-state key so caller metadata proper stays untouched.
func (cfg *Config) OverrideMeta() series.Meta {
	if len(cfg.Overrides) == 0 {
		return nil
	}
	state := make(map[string]any, len(cfg.Overrides))
	for name, fields := range cfg.Overrides {
		m := make(map[string]any, len(fields))
		for k, v := range fields {
			m[k] = v
		}
		state[name] = m
	}
	return series.Meta{"state": state}
}
