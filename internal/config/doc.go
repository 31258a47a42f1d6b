// Package config loads and watches the cairnd configuration file (config.yaml).
//
// Top-level types:
//   - Config{Defaults, Series, Feeds, Server, PurgeInterval, Alerts,
//     Overrides} — full config tree parsed from YAML
//   - SeriesConfig — name, limit, errors, order (asc|desc|stack), threshold,
//     min/max admission bounds, max_age
//   - FeedConfig — id, endpoint, interval, timeout, metrics []
//   - MetricMapping — family, series, scale: routes one Prometheus metric
//     family into one cache series
//   - AlertsConfig, AlertRule, WebhookConfig — cache-quality alerting
//
// Load(path) reads the YAML file, applies defaults (port 8080, 5s broadcast,
// 1m purge), then validates required fields, enum values, and that every
// metric mapping, override, and alert rule targets a declared series.
//
// Config.Schema() compiles the series declarations into the cache schema;
// Config.OverrideMeta() turns the overrides block into container metadata so
// threshold/limit changes apply at policy-resolution time.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors (vim, VS Code) by re-adding the watch after
// a rename event.
package config
