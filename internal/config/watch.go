package config

import (
	"context"
	"log/slog"
	"reflect"
	"sort"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with the newly loaded
// Config each time the file is written. cur is the config loaded at startup;
// it anchors the drift checks below. Watch runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML), the error is logged and the
// previous config remains active — Watch does not call onChange. cairnd uses
// this to re-apply the overrides block without a restart; the container
// schema is compiled once at startup, so when a reload changes the series
// declarations themselves, Watch warns that a restart is required and still
// hands the config over for the parts that do apply live.
func Watch(ctx context.Context, path string, cur *Config, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only reload on write or create events. Editors often write via
			// rename (atomic save), so also catch fsnotify.Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed — keeping previous config",
					"path", path, "err", err)
				continue
			}

			if drift := schemaDrift(cur, cfg); len(drift) > 0 {
				slog.Warn("config: series declarations changed — restart required to apply",
					"series", drift)
			}
			if changed := changedOverrides(cur, cfg); len(changed) > 0 {
				slog.Info("config: overrides changed", "series", changed)
			}

			slog.Info("config: reloaded", "path", path)
			cur = cfg
			onChange(cfg)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// schemaDrift reports the names of series whose declarations differ between
// old and new, including series added or removed. The container schema is
// compiled once at startup, so any drift only takes effect after a restart.
func schemaDrift(old, new *Config) []string {
	prev := make(map[string]SeriesConfig, len(old.Series))
	for _, sc := range old.Series {
		prev[sc.Name] = sc
	}

	var drift []string
	seen := make(map[string]struct{}, len(new.Series))
	for _, sc := range new.Series {
		seen[sc.Name] = struct{}{}
		if p, ok := prev[sc.Name]; !ok || !sameDecl(p, sc) {
			drift = append(drift, sc.Name)
		}
	}
	for name := range prev {
		if _, ok := seen[name]; !ok {
			drift = append(drift, name)
		}
	}
	sort.Strings(drift)
	return drift
}

func sameDecl(a, b SeriesConfig) bool {
	return a.Limit == b.Limit &&
		a.Errors == b.Errors &&
		a.Order == b.Order &&
		eqFloatPtr(a.Threshold, b.Threshold) &&
		eqFloatPtr(a.Min, b.Min) &&
		eqFloatPtr(a.Max, b.Max) &&
		a.MaxAge == b.MaxAge
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// changedOverrides reports the series whose overrides block differs between
// old and new. These are the parts of a reload that apply without a restart.
func changedOverrides(old, new *Config) []string {
	names := make(map[string]struct{}, len(old.Overrides)+len(new.Overrides))
	for name := range old.Overrides {
		names[name] = struct{}{}
	}
	for name := range new.Overrides {
		names[name] = struct{}{}
	}

	var changed []string
	for name := range names {
		if !reflect.DeepEqual(old.Overrides[name], new.Overrides[name]) {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}
